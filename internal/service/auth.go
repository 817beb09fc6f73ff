package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/amlaw/client-portal/internal/domain"
	"github.com/amlaw/client-portal/internal/security"
	"github.com/rs/zerolog/log"
)

// AuthService handles client login and session tokens
type AuthService struct {
	credentials domain.CredentialStore
	sessions    domain.SessionStore
	jwtManager  *security.JWTManager
	fp          *security.Fingerprinter
}

// NewAuthService creates a new auth service
func NewAuthService(
	credentials domain.CredentialStore,
	sessions domain.SessionStore,
	jwtManager *security.JWTManager,
	fp *security.Fingerprinter,
) *AuthService {
	return &AuthService{
		credentials: credentials,
		sessions:    sessions,
		jwtManager:  jwtManager,
		fp:          fp,
	}
}

// Login checks the client identifier and opens a fresh session. The
// identifier is compared exactly as entered.
func (s *AuthService) Login(ctx context.Context, input domain.LoginRequest) (*domain.LoginResult, error) {
	fingerprint := s.fp.Fingerprint(input.ClientID)

	exists, err := s.credentials.Exists(ctx, input.ClientID)
	if err != nil {
		return nil, &domain.CollaboratorError{Collaborator: "credential store", Op: "lookup", Err: err}
	}
	if !exists {
		log.Info().Str("client", fingerprint).Msg("login rejected")
		return nil, &domain.AuthError{}
	}

	profile, err := s.credentials.Get(ctx, input.ClientID)
	if err != nil {
		return nil, &domain.CollaboratorError{Collaborator: "credential store", Op: "get", Err: err}
	}

	session := domain.NewSession(input.ClientID)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, &domain.CollaboratorError{Collaborator: "session store", Op: "create", Err: err}
	}

	token, expiresIn, err := s.jwtManager.IssueSessionToken(session.ID, fingerprint)
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	log.Info().Str("client", fingerprint).Msg("client logged in")

	return &domain.LoginResult{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		Client:      *profile,
	}, nil
}

// Authenticate resolves a bearer token to its live session
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := s.jwtManager.ValidateSessionToken(token)
	if err != nil {
		return nil, &domain.AuthError{Reason: "invalid or expired token"}
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, &domain.AuthError{Reason: "session has ended"}
	}
	if err != nil {
		return nil, &domain.CollaboratorError{Collaborator: "session store", Op: "get", Err: err}
	}

	if !session.Authenticated || s.fp.Fingerprint(session.ClientID) != claims.ClientFingerprint {
		return nil, &domain.AuthError{Reason: "invalid or expired token"}
	}

	return session, nil
}

// Logout ends the session; its form state is discarded
func (s *AuthService) Logout(ctx context.Context, session *domain.Session) error {
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return &domain.CollaboratorError{Collaborator: "session store", Op: "delete", Err: err}
	}
	log.Info().Str("client", s.fp.Fingerprint(session.ClientID)).Msg("client logged out")
	return nil
}

// Profile returns the welcome data for the session's client
func (s *AuthService) Profile(ctx context.Context, session *domain.Session) (*domain.ClientProfile, error) {
	profile, err := s.credentials.Get(ctx, session.ClientID)
	if err != nil {
		return nil, &domain.CollaboratorError{Collaborator: "credential store", Op: "get", Err: err}
	}
	return profile, nil
}

// Fingerprint returns the log-safe label for a client identifier
func (s *AuthService) Fingerprint(clientID string) string {
	return s.fp.Fingerprint(clientID)
}
