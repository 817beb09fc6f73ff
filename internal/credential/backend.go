// Package credential resolves client identifiers against a configurable
// backend. Identifiers are compared exactly: no trimming or case folding.
package credential

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/amlaw/client-portal/internal/config"
	"github.com/amlaw/client-portal/internal/domain"
)

// Backend is a CredentialStore with a connection lifecycle
type Backend interface {
	domain.CredentialStore

	// Driver returns the backend identifier (static, postgres, ...)
	Driver() string

	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error

	// Close releases the backend's connections
	Close() error
}

// Factory opens a backend from configuration
type Factory func(ctx context.Context, cfg *config.Config) (Backend, error)

// Registry maps driver names to backend factories
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for a driver
func (r *Registry) Register(driver string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[driver] = factory
}

// Drivers returns the registered driver names, sorted
func (r *Registry) Drivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drivers := make([]string, 0, len(r.factories))
	for d := range r.factories {
		drivers = append(drivers, d)
	}
	sort.Strings(drivers)
	return drivers
}

// Open builds the backend selected by cfg.Credentials.Driver and verifies it
// is reachable.
func (r *Registry) Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	r.mu.RLock()
	factory, ok := r.factories[cfg.Credentials.Driver]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported credentials driver: %s", cfg.Credentials.Driver)
	}

	backend, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s credentials: %w", cfg.Credentials.Driver, err)
	}

	if err := backend.Ping(ctx); err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to ping %s credentials: %w", cfg.Credentials.Driver, err)
	}

	return backend, nil
}

// Exists adapts a Get lookup into a membership answer
func Exists(ctx context.Context, store domain.CredentialStore, clientID string) (bool, error) {
	if clientID == "" {
		return false, nil
	}
	_, err := store.Get(ctx, clientID)
	if errors.Is(err, domain.ErrClientNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidTableName reports whether name is safe to splice into SQL
func ValidTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}
