// Package firestore records completed onboardings in Cloud Firestore
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/amlaw/client-portal/internal/domain"
)

type recordDoc struct {
	ReferenceID     string            `firestore:"referenceId"`
	ClientID        string            `firestore:"clientId"`
	SignatureMethod string            `firestore:"signatureMethod"`
	TypedSignature  string            `firestore:"typedSignature,omitempty"`
	Artifacts       map[string]string `firestore:"artifacts"`
	CompletedAt     time.Time         `firestore:"completedAt"`
}

// OnboardingRecordRepository stores one document per reference ID
type OnboardingRecordRepository struct {
	client     *firestore.Client
	collection string
}

// NewClient opens a Firestore client for the project
func NewClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore: project ID cannot be empty")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return client, nil
}

// NewOnboardingRecordRepository creates a repository over collection
func NewOnboardingRecordRepository(client *firestore.Client, collection string) *OnboardingRecordRepository {
	return &OnboardingRecordRepository{client: client, collection: collection}
}

// Create writes the record; an existing reference ID is an error
func (r *OnboardingRecordRepository) Create(ctx context.Context, record *domain.OnboardingRecord) error {
	doc := recordDoc{
		ReferenceID:     record.ReferenceID.String(),
		ClientID:        record.ClientID,
		SignatureMethod: string(record.SignatureMethod),
		TypedSignature:  record.TypedSignature,
		Artifacts:       record.Artifacts,
		CompletedAt:     record.CompletedAt,
	}

	if _, err := r.client.Collection(r.collection).Doc(doc.ReferenceID).Create(ctx, doc); err != nil {
		return fmt.Errorf("failed to create onboarding record: %w", err)
	}
	return nil
}
