// Package memory holds single-process implementations of the session store
// and rate limiter, used for development and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/amlaw/client-portal/internal/domain"
)

type entry struct {
	data    []byte
	expires time.Time
}

// SessionStore keeps JSON snapshots of sessions so callers never share
// mutable state with the store.
type SessionStore struct {
	ttl      time.Duration
	now      func() time.Time
	mu       sync.Mutex
	sessions map[string]entry
}

// NewSessionStore creates a store with a sliding TTL; zero disables expiry
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]entry),
	}
}

func (s *SessionStore) expiry() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.ttl)
}

func (s *SessionStore) live(e entry) bool {
	return e.expires.IsZero() || s.now().Before(e.expires)
}

func (s *SessionStore) Create(_ context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[session.ID]; ok && s.live(e) {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	s.sessions[session.ID] = entry{data: data, expires: s.expiry()}
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	if ok && !s.live(e) {
		delete(s.sessions, id)
		ok = false
	}
	if ok {
		e.expires = s.expiry()
		s.sessions[id] = e
	}
	s.mu.Unlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	var session domain.Session
	if err := json.Unmarshal(e.data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) Save(_ context.Context, session *domain.Session) error {
	session.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[session.ID]
	if !ok || !s.live(e) {
		delete(s.sessions, session.ID)
		return domain.ErrSessionNotFound
	}
	s.sessions[session.ID] = entry{data: data, expires: s.expiry()}
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) Ping(context.Context) error { return nil }

// Len reports the number of stored sessions, expired ones included
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
