// Package deepseek wires DeepSeek's OpenAI-compatible chat endpoint
package deepseek

import (
	"github.com/amlaw/client-portal/internal/llm/openai"
)

const baseURL = "https://api.deepseek.com/v1"

// NewProvider creates a new DeepSeek provider
func NewProvider(apiKey, defaultModel string, opts ...openai.Option) *openai.Provider {
	if defaultModel == "" {
		defaultModel = "deepseek-chat"
	}
	opts = append([]openai.Option{
		openai.WithBaseURL(baseURL),
		openai.WithName("deepseek", "deepseek-chat", "deepseek-reasoner"),
	}, opts...)
	return openai.NewProvider(apiKey, defaultModel, opts...)
}
