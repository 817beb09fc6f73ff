package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amlaw/client-portal/internal/llm"
	"github.com/amlaw/client-portal/internal/llm/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, false, body["stream"])
		assert.Equal(t, "llama3", body["model"])

		_, _ = w.Write([]byte(`{"response":"See the Legal Aid South Africa Act.","done":true,"prompt_eval_count":10,"eval_count":5}`))
	}))
	defer srv.Close()

	p := ollama.NewProvider(srv.URL+"/", "")
	require.True(t, p.IsConfigured())

	resp, err := p.Generate(context.Background(), llm.Request{Prompt: "q"}, "")
	require.NoError(t, err)
	assert.Equal(t, "See the Legal Aid South Africa Act.", resp.Text)
	assert.Equal(t, 15, resp.TokensUsed)
}

func TestProvider_NotConfigured(t *testing.T) {
	_, err := ollama.NewProvider("", "").Generate(context.Background(), llm.Request{Prompt: "q"}, "")
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}
