package domain

import "context"

// ClientProfile is the reference data for a portal client
type ClientProfile struct {
	ID    string `json:"-" yaml:"id" bson:"_id"`
	Name  string `json:"name" yaml:"name" bson:"name"`
	Email string `json:"email" yaml:"email" bson:"email"`
}

// DefaultClients is the built-in seed set used when no other source is configured
func DefaultClients() []ClientProfile {
	return []ClientProfile{
		{ID: "1234", Name: "John Doe", Email: "john@example.com"},
		{ID: "5678", Name: "Jane Smith", Email: "jane@example.com"},
	}
}

// CredentialStore answers membership queries by client identifier.
// An unknown identifier yields (false, nil); errors are reserved for
// backend failures.
type CredentialStore interface {
	Exists(ctx context.Context, clientID string) (bool, error)
	Get(ctx context.Context, clientID string) (*ClientProfile, error)
}

// LoginRequest is the body of a login attempt
type LoginRequest struct {
	ClientID string `json:"client_id" validate:"required,max=128"`
}

// LoginResult is returned after a successful login
type LoginResult struct {
	AccessToken string        `json:"access_token"`
	ExpiresIn   int64         `json:"expires_in"`
	Client      ClientProfile `json:"client"`
}
