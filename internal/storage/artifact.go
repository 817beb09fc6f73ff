package storage

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/amlaw/client-portal/internal/domain"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// allowed maps accepted extensions to the content type the bytes must have
var allowed = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

var disableConfigDir sync.Once

// Inspector decides whether an upload is an acceptable onboarding document
type Inspector struct {
	maxSize     int64
	validatePDF bool
}

// NewInspector creates an inspector. PDFs are structurally validated when
// validatePDF is set.
func NewInspector(maxSize int64, validatePDF bool) *Inspector {
	disableConfigDir.Do(api.DisableConfigDir)
	return &Inspector{maxSize: maxSize, validatePDF: validatePDF}
}

// MaxSize returns the largest accepted upload in bytes
func (i *Inspector) MaxSize() int64 {
	return i.maxSize
}

// Inspect checks extension, size and sniffed type and returns the content
// type to store the document under.
func (i *Inspector) Inspect(field, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	want, ok := allowed[ext]
	if !ok {
		return "", &domain.ValidationError{Field: field, Message: "only PDF, JPG, JPEG and PNG files are accepted"}
	}

	if len(data) == 0 {
		return "", &domain.ValidationError{Field: field, Message: "file is empty"}
	}
	if i.maxSize > 0 && int64(len(data)) > i.maxSize {
		return "", &domain.ValidationError{Field: field, Message: fmt.Sprintf("file exceeds %d bytes", i.maxSize)}
	}

	detected := mimetype.Detect(data)
	if !detected.Is(want) {
		return "", &domain.ValidationError{Field: field, Message: fmt.Sprintf("file content is %s, not %s", detected.String(), want)}
	}

	if want == "application/pdf" && i.validatePDF {
		conf := model.NewDefaultConfiguration()
		conf.ValidationMode = model.ValidationRelaxed
		if err := api.Validate(bytes.NewReader(data), conf); err != nil {
			return "", &domain.ValidationError{Field: field, Message: "file is not a readable PDF"}
		}
	}

	return want, nil
}
