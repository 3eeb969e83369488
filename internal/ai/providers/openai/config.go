package openai

import (
	"fmt"
	"net/url"
	"time"

	"github.com/yildizm/attackmap/internal/ai"
)

const (
	DefaultBaseURL         = "https://api.openai.com"
	DefaultEmbeddingModel  = "text-embedding-3-small"
	DefaultCompletionModel = "gpt-4o-mini"
	DefaultTemperature     = 0.2
	DefaultTimeout         = 30 * time.Second

	// maxBatchInputs is the upper bound on inputs per embeddings call
	maxBatchInputs = 2048
)

type Config struct {
	APIKey          string        `json:"api_key"`
	BaseURL         string        `json:"base_url"`
	EmbeddingModel  string        `json:"embedding_model"`
	CompletionModel string        `json:"completion_model"`
	Temperature     float64       `json:"temperature"`
	Timeout         time.Duration `json:"timeout"`
	OrganizationID  string        `json:"organization_id,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:         DefaultBaseURL,
		EmbeddingModel:  DefaultEmbeddingModel,
		CompletionModel: DefaultCompletionModel,
		Temperature:     DefaultTemperature,
		Timeout:         DefaultTimeout,
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ai.NewConfigurationError("openai", "api_key", "API key is required")
	}

	if c.BaseURL == "" {
		return ai.NewConfigurationError("openai", "base_url", "base URL is required")
	}

	if _, err := url.Parse(c.BaseURL); err != nil {
		return ai.NewConfigurationError("openai", "base_url", fmt.Sprintf("invalid base URL: %v", err))
	}

	if c.EmbeddingModel == "" {
		return ai.NewConfigurationError("openai", "embedding_model", "embedding model is required")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return ai.NewConfigurationError("openai", "temperature", "temperature must be between 0 and 2")
	}

	if c.Timeout <= 0 {
		return ai.NewConfigurationError("openai", "timeout", "timeout must be positive")
	}

	return nil
}

func (c *Config) ToProviderConfig() *ai.ProviderConfig {
	headers := map[string]string{
		"Authorization": "Bearer " + c.APIKey,
		"Content-Type":  "application/json",
	}

	if c.OrganizationID != "" {
		headers["OpenAI-Organization"] = c.OrganizationID
	}

	return &ai.ProviderConfig{
		Name:            "openai",
		Type:            "openai",
		APIKey:          c.APIKey,
		BaseURL:         c.BaseURL,
		EmbeddingModel:  c.EmbeddingModel,
		CompletionModel: c.CompletionModel,
		Timeout:         c.Timeout,
		Headers:         headers,
		Options: map[string]interface{}{
			"temperature":     c.Temperature,
			"organization_id": c.OrganizationID,
		},
	}
}

func FromProviderConfig(config *ai.ProviderConfig) *Config {
	if config == nil {
		return DefaultConfig()
	}

	c := &Config{
		APIKey:          config.APIKey,
		BaseURL:         config.BaseURL,
		EmbeddingModel:  config.EmbeddingModel,
		CompletionModel: config.CompletionModel,
		Timeout:         config.Timeout,
		Temperature:     DefaultTemperature,
	}

	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = DefaultEmbeddingModel
	}
	if c.CompletionModel == "" {
		c.CompletionModel = DefaultCompletionModel
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}

	if config.Options != nil {
		if temperature, ok := config.Options["temperature"].(float64); ok {
			c.Temperature = temperature
		}
		if orgID, ok := config.Options["organization_id"].(string); ok {
			c.OrganizationID = orgID
		}
	}

	return c
}
