package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by providers missing credentials or a host
var ErrNotConfigured = errors.New("provider not configured")

// Request is a single plain-text generation
type Request struct {
	Prompt       string
	SystemPrompt string
	MaxTokens    int
}

// Response contains LLM generation result
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Generate returns the model's text for the prompt. An empty model
	// selects DefaultModel.
	Generate(ctx context.Context, req Request, model string) (*Response, error)
}

// DefaultMaxTokens caps responses when a request leaves MaxTokens unset
const DefaultMaxTokens = 2048

// MaxTokensOrDefault returns the request's cap or DefaultMaxTokens
func (r Request) MaxTokensOrDefault() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return DefaultMaxTokens
}
