package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key   string
		want  string
		valid bool
	}{
		{"mandate/AM LAW INC FICA FEE MANDATE 2025.pdf", "mandate/AM LAW INC FICA FEE MANDATE 2025.pdf", true},
		{"/onboarding/abc/id.png", "onboarding/abc/id.png", true},
		{"", "", false},
		{"../etc/passwd", "", false},
		{"onboarding/../../x", "", false},
		{"a//b", "", false},
		{`a\b`, "", false},
		{".", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := CleanKey(tt.key)
			if !tt.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	payload := []byte("%PDF-1.4 mandate")
	n, err := store.Put(ctx, "mandate/fee mandate.pdf", bytes.NewReader(payload), "application/pdf")
	require.NoError(t, err)
	assert.EqualValues(t, len(payload), n)

	rc, info, err := store.Open(ctx, "mandate/fee mandate.pdf")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, "application/pdf", info.ContentType)
	assert.EqualValues(t, len(payload), info.Size)

	require.NoError(t, store.Delete(ctx, "mandate/fee mandate.pdf"))
	require.NoError(t, store.Delete(ctx, "mandate/fee mandate.pdf"))

	_, _, err = store.Open(ctx, "mandate/fee mandate.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Put(ctx, "../escape.pdf", bytes.NewReader(payload), "")
	assert.Error(t, err)
	_, _, err = store.Open(ctx, "mandate")
	assert.ErrorIs(t, err, ErrNotFound)
}
