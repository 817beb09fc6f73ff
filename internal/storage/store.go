// Package storage keeps onboarding documents and serves the fee mandate
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned when an object does not exist
var ErrNotFound = errors.New("object not found")

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key         string
	ContentType string
	Size        int64
}

// DocumentStore is a flat key/value object store
type DocumentStore interface {
	// Put writes r under key and returns the number of bytes stored
	Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error)

	// Open returns a reader for key; the caller closes it
	Open(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)

	// Delete removes key; a missing key is not an error
	Delete(ctx context.Context, key string) error
}

// CleanKey normalises an object key and rejects keys that escape the
// store root.
func CleanKey(key string) (string, error) {
	if key == "" || strings.ContainsRune(key, 0) || strings.Contains(key, `\`) {
		return "", errors.New("invalid object key")
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", errors.New("invalid object key")
	}
	return cleaned, nil
}
