// Package logrecord writes completed onboardings to the application log
// only. It is the default when no records database is configured.
package logrecord

import (
	"context"

	"github.com/amlaw/client-portal/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Fingerprinter hides client identifiers in log lines
type Fingerprinter interface {
	Fingerprint(id string) string
}

type Repository struct {
	logger zerolog.Logger
	fp     Fingerprinter
}

// New logs through the global logger
func New(fp Fingerprinter) *Repository {
	return &Repository{logger: log.Logger, fp: fp}
}

// NewWithLogger logs through the given logger
func NewWithLogger(logger zerolog.Logger, fp Fingerprinter) *Repository {
	return &Repository{logger: logger, fp: fp}
}

func (r *Repository) Create(_ context.Context, record *domain.OnboardingRecord) error {
	kinds := make([]string, 0, len(record.Artifacts))
	for kind := range record.Artifacts {
		kinds = append(kinds, kind)
	}

	r.logger.Info().
		Str("reference_id", record.ReferenceID.String()).
		Str("client", r.fp.Fingerprint(record.ClientID)).
		Str("signature_method", string(record.SignatureMethod)).
		Strs("artifacts", kinds).
		Time("completed_at", record.CompletedAt).
		Msg("onboarding completed")
	return nil
}
