package credential

import (
	"context"
	"fmt"
	"os"

	"github.com/amlaw/client-portal/internal/config"
	"github.com/amlaw/client-portal/internal/domain"
	"gopkg.in/yaml.v3"
)

// Static serves a fixed in-memory client table
type Static struct {
	clients map[string]domain.ClientProfile
}

// NewStatic indexes the given clients by ID. Later duplicates win.
func NewStatic(clients []domain.ClientProfile) *Static {
	m := make(map[string]domain.ClientProfile, len(clients))
	for _, c := range clients {
		m[c.ID] = c
	}
	return &Static{clients: m}
}

// OpenStatic is the Factory for the static driver. Without a seed file the
// built-in clients are served.
func OpenStatic(_ context.Context, cfg *config.Config) (Backend, error) {
	if cfg.Credentials.SeedFile == "" {
		return NewStatic(domain.DefaultClients()), nil
	}
	clients, err := LoadSeedFile(cfg.Credentials.SeedFile)
	if err != nil {
		return nil, err
	}
	return NewStatic(clients), nil
}

type seedFile struct {
	Clients []domain.ClientProfile `yaml:"clients"`
}

// LoadSeedFile reads a YAML client list:
//
//	clients:
//	  - id: "1234"
//	    name: John Doe
//	    email: john@example.com
func LoadSeedFile(path string) ([]domain.ClientProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, c := range seed.Clients {
		if c.ID == "" {
			return nil, fmt.Errorf("seed file entry %d has no id", i)
		}
	}
	return seed.Clients, nil
}

// Driver returns "static"
func (s *Static) Driver() string { return "static" }

// Exists reports whether clientID is in the table
func (s *Static) Exists(ctx context.Context, clientID string) (bool, error) {
	return Exists(ctx, s, clientID)
}

// Get returns a copy of the client profile or domain.ErrClientNotFound
func (s *Static) Get(_ context.Context, clientID string) (*domain.ClientProfile, error) {
	c, ok := s.clients[clientID]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return &c, nil
}

// Ping always succeeds
func (s *Static) Ping(context.Context) error { return nil }

// Close is a no-op
func (s *Static) Close() error { return nil }
