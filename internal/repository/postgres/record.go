package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amlaw/client-portal/internal/domain"
)

// OnboardingRecordRepository writes completed onboardings to PostgreSQL
type OnboardingRecordRepository struct {
	db *DB
}

// NewOnboardingRecordRepository creates a new record repository
func NewOnboardingRecordRepository(db *DB) *OnboardingRecordRepository {
	return &OnboardingRecordRepository{db: db}
}

// Create inserts a record; reference IDs are unique
func (r *OnboardingRecordRepository) Create(ctx context.Context, record *domain.OnboardingRecord) error {
	artifacts, err := json.Marshal(record.Artifacts)
	if err != nil {
		return fmt.Errorf("failed to marshal artifacts: %w", err)
	}

	query := `
		INSERT INTO onboarding_records (reference_id, client_id, signature_method, typed_signature, artifacts, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.Pool.Exec(ctx, query,
		record.ReferenceID,
		record.ClientID,
		string(record.SignatureMethod),
		record.TypedSignature,
		artifacts,
		record.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert onboarding record: %w", err)
	}

	return nil
}
