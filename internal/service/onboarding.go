package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/amlaw/client-portal/internal/domain"
	"github.com/amlaw/client-portal/internal/onboarding"
	"github.com/amlaw/client-portal/internal/security"
	"github.com/amlaw/client-portal/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// OnboardingService drives the FICA onboarding form of a session
type OnboardingService struct {
	sessions        domain.SessionStore
	credentials     domain.CredentialStore
	documents       storage.DocumentStore
	inspector       *storage.Inspector
	records         domain.OnboardingRecordRepository
	fp              *security.Fingerprinter
	mandateKey      string
	mandateFilename string
}

// NewOnboardingService creates a new onboarding service
func NewOnboardingService(
	sessions domain.SessionStore,
	credentials domain.CredentialStore,
	documents storage.DocumentStore,
	inspector *storage.Inspector,
	records domain.OnboardingRecordRepository,
	fp *security.Fingerprinter,
	mandateKey, mandateFilename string,
) *OnboardingService {
	return &OnboardingService{
		sessions:        sessions,
		credentials:     credentials,
		documents:       documents,
		inspector:       inspector,
		records:         records,
		fp:              fp,
		mandateKey:      mandateKey,
		mandateFilename: mandateFilename,
	}
}

// MaxUploadSize returns the per-file upload limit in bytes
func (s *OnboardingService) MaxUploadSize() int64 {
	return s.inspector.MaxSize()
}

// View evaluates the session's current form
func (s *OnboardingService) View(ctx context.Context, session *domain.Session) (*domain.OnboardingView, error) {
	profile, err := s.credentials.Get(ctx, session.ClientID)
	if err != nil {
		return nil, &domain.CollaboratorError{Collaborator: "credential store", Op: "get", Err: err}
	}
	return &domain.OnboardingView{
		Client:   *profile,
		Form:     session.Onboarding,
		Progress: onboarding.Evaluate(session.Onboarding),
	}, nil
}

// Submit stores any uploaded documents, folds the submission into the
// session's form and re-evaluates it. A rejected upload leaves the form as it
// was.
func (s *OnboardingService) Submit(ctx context.Context, session *domain.Session, sub domain.OnboardingSubmission, uploads []domain.ArtifactUpload) (*domain.OnboardingView, error) {
	fingerprint := s.fp.Fingerprint(session.ClientID)

	type accepted struct {
		kind        domain.ArtifactKind
		filename    string
		contentType string
		data        []byte
	}
	checked := make([]accepted, 0, len(uploads))
	for _, up := range uploads {
		contentType, err := s.inspector.Inspect(string(up.Kind), up.Filename, up.Data)
		if err != nil {
			return nil, err
		}
		checked = append(checked, accepted{up.Kind, filepath.Base(up.Filename), contentType, up.Data})
	}

	if sub.Artifacts == nil {
		sub.Artifacts = make(map[domain.ArtifactKind]*domain.Artifact, len(checked))
	}
	var stored []string
	for _, up := range checked {
		key := fmt.Sprintf("onboarding/%s/%s-%s%s", fingerprint, up.kind, uuid.NewString(), strings.ToLower(filepath.Ext(up.filename)))
		size, err := s.documents.Put(ctx, key, bytes.NewReader(up.data), up.contentType)
		if err != nil {
			s.discard(ctx, stored)
			return nil, &domain.CollaboratorError{Collaborator: "document storage", Op: "put", Err: err}
		}
		stored = append(stored, key)
		sub.Artifacts[up.kind] = &domain.Artifact{
			Key:         key,
			Filename:    up.filename,
			ContentType: up.contentType,
			Size:        size,
			UploadedAt:  time.Now().UTC(),
		}
	}

	previous := session.Onboarding
	next, err := onboarding.Apply(previous, sub)
	if err != nil {
		s.discard(ctx, stored)
		return nil, err
	}

	session.Onboarding = next
	if err := s.save(ctx, session); err != nil {
		session.Onboarding = previous
		s.discard(ctx, stored)
		return nil, err
	}

	// Objects no longer referenced by the form are dropped.
	var replaced []string
	for _, kind := range domain.ArtifactKinds {
		old, cur := previous.Artifact(kind), next.Artifact(kind)
		if old != nil && (cur == nil || cur.Key != old.Key) {
			replaced = append(replaced, old.Key)
		}
	}
	s.discard(ctx, replaced)

	progress := onboarding.Evaluate(next)
	log.Info().
		Str("client", fingerprint).
		Str("state", string(progress.State)).
		Int("uploads", len(stored)).
		Msg("onboarding form updated")

	return s.View(ctx, session)
}

// Mandate opens the fee mandate document for download
func (s *OnboardingService) Mandate(ctx context.Context) (io.ReadCloser, *storage.ObjectInfo, string, error) {
	r, info, err := s.documents.Open(ctx, s.mandateKey)
	if err != nil {
		return nil, nil, "", &domain.CollaboratorError{Collaborator: "document storage", Op: "open mandate", Err: err}
	}
	return r, info, s.mandateFilename, nil
}

// Complete finalises onboarding when every requirement is met, records it
// and ends the session. The session is kept if recording fails so the client
// can retry.
func (s *OnboardingService) Complete(ctx context.Context, session *domain.Session) (*domain.OnboardingCompletion, error) {
	ref, progress, err := onboarding.Complete(session.Onboarding)
	if err != nil {
		return nil, err
	}

	form := session.Onboarding
	artifacts := make(map[string]string, len(domain.ArtifactKinds))
	for _, kind := range domain.ArtifactKinds {
		if a := form.Artifact(kind); a != nil {
			artifacts[string(kind)] = a.Key
		}
	}
	typed := ""
	if form.Method == domain.SignatureElectronic {
		typed = form.TypedSignature
	}

	record := &domain.OnboardingRecord{
		ReferenceID:     ref,
		ClientID:        session.ClientID,
		SignatureMethod: form.Method,
		TypedSignature:  typed,
		Artifacts:       artifacts,
		CompletedAt:     time.Now().UTC(),
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, &domain.CollaboratorError{Collaborator: "onboarding records", Op: "create", Err: err}
	}

	if err := s.endSession(ctx, session); err != nil {
		log.Error().Err(err).Str("reference_id", ref.String()).Msg("failed to end session after onboarding")
		return nil, err
	}

	log.Info().
		Str("client", s.fp.Fingerprint(session.ClientID)).
		Str("reference_id", ref.String()).
		Msg("onboarding completed")

	return &domain.OnboardingCompletion{
		ReferenceID: ref,
		Progress:    progress,
		CompletedAt: record.CompletedAt,
	}, nil
}

// endSession removes the session. When the store cannot delete it, the
// session is saved unauthenticated instead so its token stops working.
func (s *OnboardingService) endSession(ctx context.Context, session *domain.Session) error {
	err := s.sessions.Delete(ctx, session.ID)
	if err == nil || errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	log.Warn().Err(err).Str("session_id", session.ID).Msg("session delete failed, revoking instead")

	session.Authenticated = false
	if err := s.sessions.Save(ctx, session); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return &domain.CollaboratorError{Collaborator: "session store", Op: "end session", Err: err}
	}
	return nil
}

func (s *OnboardingService) save(ctx context.Context, session *domain.Session) error {
	if err := s.sessions.Save(ctx, session); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return &domain.AuthError{Reason: "session has ended"}
		}
		return &domain.CollaboratorError{Collaborator: "session store", Op: "save", Err: err}
	}
	return nil
}

// discard deletes stored objects; failures are only logged
func (s *OnboardingService) discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.documents.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to delete document")
		}
	}
}
