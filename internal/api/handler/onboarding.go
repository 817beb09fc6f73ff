package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/amlaw/client-portal/internal/api/middleware"
	"github.com/amlaw/client-portal/internal/api/response"
	"github.com/amlaw/client-portal/internal/domain"
	"github.com/amlaw/client-portal/internal/service"
	"github.com/rs/zerolog/log"
)

const multipartMemory = 8 << 20

// OnboardingHandler handles the FICA onboarding endpoints
type OnboardingHandler struct {
	onboardingService *service.OnboardingService
}

// NewOnboardingHandler creates a new onboarding handler
func NewOnboardingHandler(onboardingService *service.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboardingService: onboardingService}
}

// Get returns the evaluated onboarding progress
func (h *OnboardingHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	view, err := h.onboardingService.View(r.Context(), session)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, view)
}

// Submit accepts a multipart form snapshot. Fields that are absent leave the
// current value in place:
//
//	sign_method         "e_sign", "upload" or "" to deselect
//	typed_signature     full name typed as signature
//	confirmed           "true" or "false"
//	signed_mandate, id_document, proof_of_residence   files
//	remove              repeated document slot to clear
func (h *OnboardingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit := int64(len(domain.ArtifactKinds))*h.onboardingService.MaxUploadSize() + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		response.BadRequest(w, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	sub, err := parseSubmission(r.MultipartForm)
	if err != nil {
		response.FromError(w, err)
		return
	}

	uploads, err := readUploads(r.MultipartForm, h.onboardingService.MaxUploadSize())
	if err != nil {
		response.FromError(w, err)
		return
	}

	view, err := h.onboardingService.Submit(r.Context(), session, sub, uploads)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, view)
}

// Mandate streams the fee mandate PDF
func (h *OnboardingHandler) Mandate(w http.ResponseWriter, r *http.Request) {
	rc, info, filename, err := h.onboardingService.Mandate(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		log.Warn().Err(err).Msg("mandate download interrupted")
	}
}

// Complete finalises onboarding and ends the session
func (h *OnboardingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	done, err := h.onboardingService.Complete(r.Context(), session)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"reference_id": done.ReferenceID,
		"completed_at": done.CompletedAt,
		"progress":     done.Progress,
		"message":      "Onboarding complete. Reference ID: " + done.ReferenceID.String(),
	})
}

func formValue(form *multipart.Form, key string) (string, bool) {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func parseSubmission(form *multipart.Form) (domain.OnboardingSubmission, error) {
	var sub domain.OnboardingSubmission

	if v, ok := formValue(form, "sign_method"); ok {
		method := domain.SignatureMethod(strings.TrimSpace(v))
		sub.Method = &method
	}
	if v, ok := formValue(form, "typed_signature"); ok {
		if len(v) > 256 {
			return sub, &domain.ValidationError{Field: "typed_signature", Message: "must be at most 256 characters"}
		}
		sub.TypedSignature = &v
	}
	if v, ok := formValue(form, "confirmed"); ok {
		confirmed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return sub, &domain.ValidationError{Field: "confirmed", Message: "must be true or false"}
		}
		sub.Confirmed = &confirmed
	}

	for _, v := range form.Value["remove"] {
		kind, err := parseKind(v)
		if err != nil {
			return sub, err
		}
		sub.Remove = append(sub.Remove, kind)
	}

	return sub, nil
}

func parseKind(s string) (domain.ArtifactKind, error) {
	for _, kind := range domain.ArtifactKinds {
		if string(kind) == s {
			return kind, nil
		}
	}
	return "", &domain.ValidationError{Field: "remove", Message: fmt.Sprintf("unknown document %q", s)}
}

func readUploads(form *multipart.Form, maxSize int64) ([]domain.ArtifactUpload, error) {
	var uploads []domain.ArtifactUpload
	for _, kind := range domain.ArtifactKinds {
		files := form.File[string(kind)]
		if len(files) == 0 {
			continue
		}
		if len(files) > 1 {
			return nil, &domain.ValidationError{Field: string(kind), Message: "only one file per document"}
		}

		data, err := readFile(files[0], maxSize)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, domain.ArtifactUpload{
			Kind:     kind,
			Filename: files[0].Filename,
			Data:     data,
		})
	}
	return uploads, nil
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	// one byte over the limit is enough for the inspector to reject it
	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}
