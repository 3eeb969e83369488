package ai

import (
	"time"
)

// CompletionRequest asks a provider for a text completion. Model and
// Temperature fall back to the provider's configured defaults when
// zero.
type CompletionRequest struct {
	Prompt       string  `json:"prompt"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	Model        string  `json:"model,omitempty"`
}

// CompletionResponse is a provider's answer to a CompletionRequest.
type CompletionResponse struct {
	Content      string      `json:"content"`
	FinishReason string      `json:"finish_reason"`
	Usage        *TokenUsage `json:"usage,omitempty"`
	Model        string      `json:"model"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Model identifies a model a provider can serve.
type Model struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// TokenUsage tracks token consumption for one request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ProviderConfig is the provider-neutral configuration handed to a
// factory. Providers read the fields they understand and reject what
// they cannot use.
type ProviderConfig struct {
	Name            string                 `json:"name"`
	Type            string                 `json:"type"`
	APIKey          string                 `json:"api_key,omitempty"`
	BaseURL         string                 `json:"base_url,omitempty"`
	EmbeddingModel  string                 `json:"embedding_model,omitempty"`
	CompletionModel string                 `json:"completion_model,omitempty"`
	Timeout         time.Duration          `json:"timeout,omitempty"`
	Headers         map[string]string      `json:"headers,omitempty"`
	Options         map[string]interface{} `json:"options,omitempty"`
}
