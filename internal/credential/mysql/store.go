package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/amlaw/client-portal/internal/config"
	"github.com/amlaw/client-portal/internal/credential"
	"github.com/amlaw/client-portal/internal/domain"
	_ "github.com/go-sql-driver/mysql"
)

// Store looks clients up in a MySQL table
type Store struct {
	db    *sql.DB
	query string
}

// NewStore wraps an open database handle
func NewStore(db *sql.DB, table string) (*Store, error) {
	if !credential.ValidTableName(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{
		db:    db,
		query: fmt.Sprintf("SELECT client_id, name, email FROM `%s` WHERE client_id = ?", table),
	}, nil
}

// Open is the credential.Factory for the mysql driver
func Open(_ context.Context, cfg *config.Config) (credential.Backend, error) {
	db, err := sql.Open("mysql", cfg.Credentials.MySQL.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)

	store, err := NewStore(db, cfg.Credentials.Table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Driver() string { return "mysql" }

func (s *Store) Exists(ctx context.Context, clientID string) (bool, error) {
	return credential.Exists(ctx, s, clientID)
}

// Get compares the stored ID in Go as well, since the default MySQL
// collations ignore case and trailing spaces.
func (s *Store) Get(ctx context.Context, clientID string) (*domain.ClientProfile, error) {
	var c domain.ClientProfile
	err := s.db.QueryRowContext(ctx, s.query, clientID).Scan(&c.ID, &c.Name, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query client: %w", err)
	}
	if c.ID != clientID {
		return nil, domain.ErrClientNotFound
	}
	return &c, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
