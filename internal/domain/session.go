package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is the private state of one authenticated client. An
// unauthenticated visitor has no session at all.
type Session struct {
	ID            string         `json:"id"`
	ClientID      string         `json:"client_id"`
	Authenticated bool           `json:"authenticated"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Analysis      AnalysisState  `json:"analysis"`
	Onboarding    OnboardingForm `json:"onboarding"`
}

// NewSession starts an authenticated session with cleared forms
func NewSession(clientID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:            uuid.NewString(),
		ClientID:      clientID,
		Authenticated: true,
		CreatedAt:     now,
		UpdatedAt:     now,
		Analysis:      DefaultAnalysisState(),
	}
}

// SessionStore holds sessions by ID. Get returns ErrSessionNotFound for
// unknown or expired sessions.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
