package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/tripweave/tripweave/llm"
)

// OpenAIProvider implements the OpenAI chat completions API. It also serves
// any OpenAI-compatible endpoint (local runtimes, the mock-llm fixture
// server) via a custom base URL.
type OpenAIProvider struct{}

func init() {
	llm.RegisterProvider(&OpenAIProvider{})
}

// Name returns the provider identifier.
func (o *OpenAIProvider) Name() string {
	return "openai"
}

// BuildURL constructs the chat completions endpoint.
func (o *OpenAIProvider) BuildURL(baseURL, _ string) string {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	return baseURL + "/chat/completions"
}

// SetHeaders adds the bearer token header.
func (o *OpenAIProvider) SetHeaders(req *http.Request) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
}

// openaiRequest is the chat completions request format.
type openaiRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// BuildRequestBody creates the chat completions request body. TopK is not
// supported by this API and is ignored.
func (o *OpenAIProvider) BuildRequestBody(model string, messages []llm.Message, params llm.GenerationParams) ([]byte, error) {
	req := openaiRequest{
		Model:       model,
		Messages:    messages,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   params.MaxTokens,
	}
	return json.Marshal(req)
}

// openaiResponse is the chat completions response format.
type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// ParseResponse extracts the completion from an OpenAI-style response.
func (o *OpenAIProvider) ParseResponse(body []byte, model string) (*llm.Response, error) {
	var resp openaiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, llm.NewTransientError(llm.NewCallError(llm.KindTransport,
			fmt.Errorf("parse openai response: %w", err)))
	}

	if len(resp.Choices) == 0 {
		return nil, llm.NewFatalError(llm.NewCallError(llm.KindEmptyResponse,
			fmt.Errorf("no choices in openai response")))
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return nil, llm.NewFatalError(llm.NewCallError(llm.KindSafetyBlocked,
			fmt.Errorf("choice suppressed by content filter")))
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return nil, llm.NewFatalError(llm.NewCallError(llm.KindEmptyResponse,
			fmt.Errorf("empty choice content")))
	}

	return &llm.Response{
		Content: choice.Message.Content,
		Model:   model,
		Usage: llm.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		FinishReason: choice.FinishReason,
	}, nil
}
