package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amlaw/client-portal/internal/llm"
	"github.com/amlaw/client-portal/internal/llm/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "system text", body["system"])

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"part one, "},{"type":"text","text":"part two"}],"usage":{"input_tokens":3,"output_tokens":4}}`))
	}))
	defer srv.Close()

	p := anthropic.NewProvider("key", "", srv.URL)
	resp, err := p.Generate(context.Background(), llm.Request{Prompt: "q", SystemPrompt: "system text"}, "claude-3-5-haiku-20241022")
	require.NoError(t, err)

	assert.Equal(t, "part one, part two", resp.Text)
	assert.Equal(t, "claude-3-5-haiku-20241022", resp.Model)
	assert.Equal(t, 7, resp.TokensUsed)
}

func TestProvider_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	_, err := anthropic.NewProvider("key", "", srv.URL).Generate(context.Background(), llm.Request{Prompt: "q"}, "")
	assert.Error(t, err)
}
