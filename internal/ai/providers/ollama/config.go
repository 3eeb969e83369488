package ollama

import (
	"time"

	"github.com/yildizm/attackmap/internal/ai"
)

// Config holds Ollama-specific configuration
type Config struct {
	// BaseURL is the Ollama API endpoint
	BaseURL string `json:"base_url"`

	// EmbeddingModel is the embedding model to use
	EmbeddingModel string `json:"embedding_model"`

	// CompletionModel is used for match rationale generation
	CompletionModel string `json:"completion_model"`

	// Timeout for HTTP requests
	Timeout time.Duration `json:"timeout"`

	// Temperature for completion requests
	Temperature float64 `json:"temperature"`
}

// DefaultConfig returns a default Ollama configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "http://localhost:11434",
		EmbeddingModel:  "all-minilm",
		CompletionModel: "llama3.2",
		Timeout:         60 * time.Second,
		Temperature:     0.2,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ai.NewConfigurationError("ollama", "base_url", "base URL is required")
	}

	if c.EmbeddingModel == "" {
		return ai.NewConfigurationError("ollama", "embedding_model", "embedding model is required")
	}

	if c.Timeout <= 0 {
		return ai.NewConfigurationError("ollama", "timeout", "timeout must be positive")
	}

	if c.Temperature < 0 || c.Temperature > 1 {
		return ai.NewConfigurationError("ollama", "temperature", "temperature must be between 0 and 1")
	}

	return nil
}

// ToProviderConfig converts Ollama config to generic provider config
func (c *Config) ToProviderConfig() *ai.ProviderConfig {
	return &ai.ProviderConfig{
		Name:            "ollama",
		Type:            "ollama",
		BaseURL:         c.BaseURL,
		EmbeddingModel:  c.EmbeddingModel,
		CompletionModel: c.CompletionModel,
		Timeout:         c.Timeout,
		Options: map[string]interface{}{
			"temperature": c.Temperature,
		},
	}
}

// FromProviderConfig creates Ollama config from generic provider config
func FromProviderConfig(pc *ai.ProviderConfig) *Config {
	config := DefaultConfig()

	if pc.BaseURL != "" {
		config.BaseURL = pc.BaseURL
	}

	if pc.EmbeddingModel != "" {
		config.EmbeddingModel = pc.EmbeddingModel
	}

	if pc.CompletionModel != "" {
		config.CompletionModel = pc.CompletionModel
	}

	if pc.Timeout > 0 {
		config.Timeout = pc.Timeout
	}

	if pc.Options != nil {
		if temperature, ok := pc.Options["temperature"].(float64); ok {
			config.Temperature = temperature
		}
	}

	return config
}
