// Package vertex serves Gemini models through Vertex AI using application
// default credentials instead of an API key.
package vertex

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/amlaw/client-portal/internal/config"
	"github.com/amlaw/client-portal/internal/llm"
)

type Provider struct {
	projectID string
	location  string
	model     string

	mu     sync.Mutex
	client *genai.Client
}

func NewProvider(cfg config.VertexConfig) *Provider {
	return &Provider{
		projectID: cfg.ProjectID,
		location:  cfg.Location,
		model:     cfg.Model,
	}
}

func (p *Provider) Name() string {
	return "vertex"
}

func (p *Provider) AvailableModels() []string {
	return []string{
		"gemini-1.5-pro",
		"gemini-1.5-flash",
		"gemini-2.0-flash",
	}
}

func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return "gemini-1.5-pro"
}

func (p *Provider) IsConfigured() bool {
	return p.projectID != "" && p.location != ""
}

// baseClient lazily dials Vertex AI and reuses the client across calls
func (p *Provider) baseClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	client, err := genai.NewClient(ctx, p.projectID, p.location)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	p.client = client
	return client, nil
}

func (p *Provider) Generate(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("vertex: %w (missing project or location)", llm.ErrNotConfigured)
	}

	if model == "" {
		model = p.DefaultModel()
	}

	client, err := p.baseClient(ctx)
	if err != nil {
		return nil, err
	}

	generativeModel := client.GenerativeModel(model)
	generativeModel.SetMaxOutputTokens(int32(req.MaxTokensOrDefault()))
	if req.SystemPrompt != "" {
		generativeModel.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}

	start := time.Now()
	resp, err := generativeModel.GenerateContent(ctx, genai.Text(req.Prompt))
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return nil, fmt.Errorf("vertex generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from vertex")
	}

	var output strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			output.WriteString(string(text))
		}
	}

	tokensUsed := 0
	if resp.UsageMetadata != nil {
		tokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &llm.Response{
		Text:       output.String(),
		Model:      model,
		TokensUsed: tokensUsed,
		LatencyMs:  latency,
	}, nil
}

// Close releases the underlying Vertex AI client, if one was opened
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}
