package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amlaw/client-portal/internal/config"
	"github.com/amlaw/client-portal/internal/credential"
	"github.com/amlaw/client-portal/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	client_id  TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// Store keeps clients in an embedded SQLite file
type Store struct {
	db *sql.DB
}

// NewStore opens (and if needed creates) the database at path
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Open is the credential.Factory for the sqlite driver. Clients from the
// configured seed file are upserted on every start.
func Open(ctx context.Context, cfg *config.Config) (credential.Backend, error) {
	store, err := NewStore(ctx, cfg.Credentials.SQLite.Path)
	if err != nil {
		return nil, err
	}

	if cfg.Credentials.SeedFile != "" {
		clients, err := credential.LoadSeedFile(cfg.Credentials.SeedFile)
		if err != nil {
			store.Close()
			return nil, err
		}
		if err := store.Seed(ctx, clients); err != nil {
			store.Close()
			return nil, err
		}
	}

	return store, nil
}

// Seed inserts or updates the given clients in one transaction
func (s *Store) Seed(ctx context.Context, clients []domain.ClientProfile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO clients (client_id, name, email) VALUES (?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET name = excluded.name, email = excluded.email`)
	if err != nil {
		return fmt.Errorf("failed to prepare seed: %w", err)
	}
	defer stmt.Close()

	for _, c := range clients {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Name, c.Email); err != nil {
			return fmt.Errorf("failed to seed client: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) Driver() string { return "sqlite" }

func (s *Store) Exists(ctx context.Context, clientID string) (bool, error) {
	return credential.Exists(ctx, s, clientID)
}

func (s *Store) Get(ctx context.Context, clientID string) (*domain.ClientProfile, error) {
	var c domain.ClientProfile
	err := s.db.QueryRowContext(ctx,
		`SELECT client_id, name, email FROM clients WHERE client_id = ?`, clientID,
	).Scan(&c.ID, &c.Name, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query client: %w", err)
	}
	return &c, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
