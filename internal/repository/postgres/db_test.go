package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/amlaw/client-portal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	base := config.DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     1,
		User:     "portal",
		Password: "secret",
		Database: "portal",
		SSLMode:  "disable",
		MaxConns: 2,
	}

	tests := []struct {
		name    string
		mutate  func(*config.DatabaseConfig)
		wantErr string
	}{
		{
			name:    "invalid ssl mode",
			mutate:  func(c *config.DatabaseConfig) { c.SSLMode = "sometimes" },
			wantErr: "credentials: invalid database config",
		},
		{
			name:    "unreachable server",
			mutate:  func(*config.DatabaseConfig) {},
			wantErr: "credentials: database unreachable at 127.0.0.1:1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			db, err := Open(ctx, cfg, "credentials")
			require.Error(t, err)
			assert.Nil(t, db)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
