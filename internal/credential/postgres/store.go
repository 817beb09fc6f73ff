package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/amlaw/client-portal/internal/config"
	"github.com/amlaw/client-portal/internal/credential"
	"github.com/amlaw/client-portal/internal/domain"
	pgrepo "github.com/amlaw/client-portal/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store looks clients up in a PostgreSQL table created by the migrations
type Store struct {
	pool  *pgxpool.Pool
	query string
}

// NewStore wraps an existing pool
func NewStore(pool *pgxpool.Pool, table string) (*Store, error) {
	if !credential.ValidTableName(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{
		pool:  pool,
		query: fmt.Sprintf(`SELECT client_id, name, email FROM %s WHERE client_id = $1`, pgx.Identifier{table}.Sanitize()),
	}, nil
}

// Open is the credential.Factory for the postgres driver
func Open(ctx context.Context, cfg *config.Config) (credential.Backend, error) {
	db, err := pgrepo.Open(ctx, cfg.Database, "credentials")
	if err != nil {
		return nil, err
	}

	store, err := NewStore(db.Pool, cfg.Credentials.Table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Driver() string { return "postgres" }

func (s *Store) Exists(ctx context.Context, clientID string) (bool, error) {
	return credential.Exists(ctx, s, clientID)
}

func (s *Store) Get(ctx context.Context, clientID string) (*domain.ClientProfile, error) {
	var c domain.ClientProfile
	err := s.pool.QueryRow(ctx, s.query, clientID).Scan(&c.ID, &c.Name, &c.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query client: %w", err)
	}
	return &c, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
