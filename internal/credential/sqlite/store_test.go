package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/amlaw/client-portal/internal/config"
	"github.com/amlaw/client-portal/internal/credential/sqlite"
	"github.com/amlaw/client-portal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SeedAndLookup(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.NewStore(ctx, filepath.Join(t.TempDir(), "nested", "clients.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Seed(ctx, domain.DefaultClients()))
	require.NoError(t, store.Seed(ctx, []domain.ClientProfile{{ID: "1234", Name: "John A. Doe", Email: "john@example.com"}}))

	ok, err := store.Exists(ctx, "1234")
	require.NoError(t, err)
	assert.True(t, ok)

	c, err := store.Get(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, "John A. Doe", c.Name)

	for _, id := range []string{"", "9999", "1234 "} {
		ok, err := store.Exists(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok, "id %q", id)
	}

	assert.NoError(t, store.Ping(ctx))
}

func TestOpen_WithSeedFile(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "clients.yaml")
	require.NoError(t, os.WriteFile(seed, []byte("clients:\n  - id: \"777\"\n    name: Sipho Dlamini\n    email: sipho@example.co.za\n"), 0o600))

	cfg := &config.Config{}
	cfg.Credentials.SQLite.Path = filepath.Join(dir, "clients.db")
	cfg.Credentials.SeedFile = seed

	backend, err := sqlite.Open(context.Background(), cfg)
	require.NoError(t, err)
	defer backend.Close()

	assert.Equal(t, "sqlite", backend.Driver())
	ok, err := backend.Exists(context.Background(), "777")
	require.NoError(t, err)
	assert.True(t, ok)
}
