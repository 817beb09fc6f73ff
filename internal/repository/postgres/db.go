package postgres

import (
	"context"
	"fmt"

	"github.com/amlaw/client-portal/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DB is a portal database pool. The credential table and the onboarding
// records live in the same database; Role names which of them opened it.
type DB struct {
	Pool *pgxpool.Pool
	Role string
}

// Open connects to the portal database described by cfg and verifies it
func Open(ctx context.Context, cfg config.DatabaseConfig, role string) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: invalid database config: %w", role, err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "amlaw-portal-" + role

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", role, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: database unreachable at %s:%d: %w", role, cfg.Host, cfg.Port, err)
	}

	log.Info().
		Str("role", role).
		Str("database", cfg.Database).
		Int32("max_conns", cfg.MaxConns).
		Msg("Connected to PostgreSQL")

	return &DB{Pool: pool, Role: role}, nil
}

func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping satisfies the readiness check
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
