package providers

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripweave/tripweave/llm"
)

func TestOpenAIProvider_Name(t *testing.T) {
	p := &OpenAIProvider{}
	assert.Equal(t, "openai", p.Name())
}

func TestOpenAIProvider_BuildURL(t *testing.T) {
	p := &OpenAIProvider{}

	t.Run("default base URL", func(t *testing.T) {
		assert.Equal(t, "https://api.openai.com/v1/chat/completions", p.BuildURL("", "gpt-4o-mini"))
	})

	t.Run("custom base URL for compatible endpoints", func(t *testing.T) {
		assert.Equal(t, "http://localhost:11434/v1/chat/completions", p.BuildURL("http://localhost:11434/v1/", "any"))
	})
}

func TestOpenAIProvider_SetHeaders(t *testing.T) {
	p := &OpenAIProvider{}

	t.Run("with API key", func(t *testing.T) {
		oldKey := os.Getenv("OPENAI_API_KEY")
		os.Setenv("OPENAI_API_KEY", "test-key")
		defer os.Setenv("OPENAI_API_KEY", oldKey)

		req, _ := http.NewRequest("POST", "http://example.com", nil)
		p.SetHeaders(req)
		assert.Equal(t, "Bearer test-key", req.Header.Get("Authorization"))
	})

	t.Run("without API key", func(t *testing.T) {
		oldKey := os.Getenv("OPENAI_API_KEY")
		os.Unsetenv("OPENAI_API_KEY")
		defer os.Setenv("OPENAI_API_KEY", oldKey)

		req, _ := http.NewRequest("POST", "http://example.com", nil)
		p.SetHeaders(req)
		assert.Empty(t, req.Header.Get("Authorization"))
	})
}

func TestOpenAIProvider_BuildRequestBody(t *testing.T) {
	p := &OpenAIProvider{}
	temp := 0.4

	body, err := p.BuildRequestBody("gpt-4o-mini", []llm.Message{
		{Role: "system", Content: "plan trips"},
		{Role: "user", Content: "Tokyo please"},
	}, llm.GenerationParams{
		Temperature: &temp,
		TopK:        40, // not supported by this API, must be dropped
		TopP:        0.9,
		MaxTokens:   1024,
	})
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(body, &req))

	assert.Equal(t, "gpt-4o-mini", req["model"])
	assert.Len(t, req["messages"].([]any), 2)
	assert.Equal(t, 0.4, req["temperature"])
	assert.Equal(t, 0.9, req["top_p"])
	assert.Equal(t, float64(1024), req["max_tokens"])
	_, hasTopK := req["top_k"]
	assert.False(t, hasTopK)
}

func TestOpenAIProvider_ParseResponse(t *testing.T) {
	p := &OpenAIProvider{}

	t.Run("successful response", func(t *testing.T) {
		body := `{
			"choices": [{
				"message": {"role": "assistant", "content": "Day 1: Asakusa."},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 9, "completion_tokens": 5, "total_tokens": 14}
		}`
		resp, err := p.ParseResponse([]byte(body), "gpt-4o-mini")
		require.NoError(t, err)
		assert.Equal(t, "Day 1: Asakusa.", resp.Content)
		assert.Equal(t, "gpt-4o-mini", resp.Model)
		assert.Equal(t, 14, resp.Usage.TotalTokens)
		assert.Equal(t, "stop", resp.FinishReason)
	})

	t.Run("no choices", func(t *testing.T) {
		_, err := p.ParseResponse([]byte(`{"choices": []}`), "gpt-4o-mini")
		require.Error(t, err)
		assert.True(t, llm.IsFatal(err))
		ce, ok := llm.AsCallError(err)
		require.True(t, ok)
		assert.Equal(t, llm.KindEmptyResponse, ce.Kind)
	})

	t.Run("content filter", func(t *testing.T) {
		body := `{"choices": [{"message": {"content": "x"}, "finish_reason": "content_filter"}]}`
		_, err := p.ParseResponse([]byte(body), "gpt-4o-mini")
		require.Error(t, err)
		ce, ok := llm.AsCallError(err)
		require.True(t, ok)
		assert.Equal(t, llm.KindSafetyBlocked, ce.Kind)
	})

	t.Run("empty content", func(t *testing.T) {
		body := `{"choices": [{"message": {"content": "   "}, "finish_reason": "stop"}]}`
		_, err := p.ParseResponse([]byte(body), "gpt-4o-mini")
		require.Error(t, err)
		ce, ok := llm.AsCallError(err)
		require.True(t, ok)
		assert.Equal(t, llm.KindEmptyResponse, ce.Kind)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := p.ParseResponse([]byte("oops"), "gpt-4o-mini")
		require.Error(t, err)
		assert.True(t, llm.IsTransient(err))
	})
}
