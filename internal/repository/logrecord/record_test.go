package logrecord_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/amlaw/client-portal/internal/domain"
	"github.com/amlaw/client-portal/internal/repository/logrecord"
	"github.com/amlaw/client-portal/internal/security"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Create(t *testing.T) {
	var buf bytes.Buffer
	fp, err := security.NewFingerprinter("test")
	require.NoError(t, err)

	repo := logrecord.NewWithLogger(zerolog.New(&buf), fp)
	ref := uuid.New()

	err = repo.Create(context.Background(), &domain.OnboardingRecord{
		ReferenceID:     ref,
		ClientID:        "1234",
		SignatureMethod: domain.SignatureElectronic,
		TypedSignature:  "John Doe",
		Artifacts:       map[string]string{"id_document": "k1", "proof_of_residence": "k2"},
		CompletedAt:     time.Now(),
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, ref.String(), line["reference_id"])
	assert.Equal(t, fp.Fingerprint("1234"), line["client"])
	assert.NotContains(t, buf.String(), `"1234"`)
	assert.NotContains(t, buf.String(), "John Doe")
}
