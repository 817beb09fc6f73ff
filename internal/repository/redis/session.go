package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amlaw/client-portal/internal/domain"
	"github.com/amlaw/client-portal/internal/security"
	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// SessionStore keeps sessions in Redis with a sliding TTL. When an
// encryptor is set, payloads are sealed and bound to their session ID.
type SessionStore struct {
	client    *Client
	ttl       time.Duration
	encryptor *security.Encryptor
}

// NewSessionStore creates a session store. encryptor may be nil.
func NewSessionStore(client *Client, ttl time.Duration, encryptor *security.Encryptor) *SessionStore {
	return &SessionStore{
		client:    client,
		ttl:       ttl,
		encryptor: encryptor,
	}
}

func sessionKey(id string) string {
	return sessionPrefix + id
}

func (s *SessionStore) encode(session *domain.Session) ([]byte, error) {
	if s.encryptor != nil {
		return s.encryptor.SealJSON(session, []byte(session.ID))
	}
	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, nil
}

func (s *SessionStore) decode(id string, data []byte) (*domain.Session, error) {
	var session domain.Session
	if s.encryptor != nil {
		if err := s.encryptor.OpenJSON(data, []byte(id), &session); err != nil {
			return nil, fmt.Errorf("failed to open session: %w", err)
		}
		return &session, nil
	}
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Create stores a new session; an existing ID is an error
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	data, err := s.encode(session)
	if err != nil {
		return err
	}

	ok, err := s.client.rdb.SetNX(ctx, sessionKey(session.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if !ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	return nil
}

// Get loads a session and refreshes its TTL
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.client.rdb.GetEx(ctx, sessionKey(id), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s.decode(id, data)
}

// Save overwrites an existing session. A session that expired in the
// meantime is not resurrected.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	session.UpdatedAt = time.Now().UTC()
	data, err := s.encode(session)
	if err != nil {
		return err
	}

	ok, err := s.client.rdb.SetXX(ctx, sessionKey(session.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Delete removes a session; deleting an unknown session is not an error
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
