package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/yildizm/attackmap/internal/ai"
)

// Provider talks to a local Ollama server for embeddings and
// completions.
type Provider struct {
	config  *Config
	client  *http.Client
	baseURL *url.URL

	healthMu sync.RWMutex
	healthy  bool
}

func New(config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, ai.NewConfigurationError("ollama", "base_url", "invalid base URL: "+err.Error())
	}

	return &Provider{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		baseURL: baseURL,
	}, nil
}

func (p *Provider) Name() string {
	return "ollama"
}

// Embed encodes one text into an embedding vector.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ai.NewValidationError("text", "", "text to embed is required")
	}

	var result EmbeddingsResponse
	req := &EmbeddingsRequest{Model: p.config.EmbeddingModel, Prompt: text}
	if err := p.postJSON(ctx, "/api/embeddings", req, &result); err != nil {
		return nil, err
	}
	if len(result.Embedding) == 0 {
		return nil, ai.NewProviderError(ai.ErrTypeProvider, "empty embedding returned", "ollama")
	}

	vector := make([]float32, len(result.Embedding))
	for i, v := range result.Embedding {
		vector[i] = float32(v)
	}
	return vector, nil
}

// EmbedBatch encodes multiple texts. The Ollama embeddings endpoint
// accepts one prompt per call, so the batch is issued sequentially.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := p.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding %d of %d failed: %w", i+1, len(texts), err)
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// Complete runs a text completion via /api/generate.
func (p *Provider) Complete(ctx context.Context, req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if req == nil {
		return nil, ai.NewValidationError("request", "nil", "completion request is required")
	}
	start := time.Now()

	model := req.Model
	if model == "" {
		model = p.config.CompletionModel
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.config.Temperature
	}
	options := &Options{Temperature: temperature}
	if req.MaxTokens > 0 {
		options.NumPredict = req.MaxTokens
	}

	var result GenerateResponse
	genReq := &GenerateRequest{
		Model:   model,
		Prompt:  req.Prompt,
		System:  req.SystemPrompt,
		Stream:  false,
		Options: options,
	}
	if err := p.postJSON(ctx, "/api/generate", genReq, &result); err != nil {
		return nil, err
	}

	return &ai.CompletionResponse{
		Content:      result.Response,
		FinishReason: "stop",
		Usage: &ai.TokenUsage{
			PromptTokens:     result.PromptEvalCount,
			CompletionTokens: result.EvalCount,
			TotalTokens:      result.PromptEvalCount + result.EvalCount,
		},
		Model:     result.Model,
		CreatedAt: start,
	}, nil
}

func (p *Provider) ValidateConfig() error {
	return p.config.Validate()
}

// Close is a no-op; the HTTP client keeps no state worth tearing down.
func (p *Provider) Close() error {
	return nil
}

// HealthCheck probes /api/tags, which answers whenever the server is up.
func (p *Provider) HealthCheck(ctx context.Context) error {
	err := p.getJSON(ctx, "/api/tags", nil)
	p.setHealthy(err == nil)
	return err
}

func (p *Provider) IsHealthy() bool {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.healthy
}

// ListModels returns the models the server has pulled.
func (p *Provider) ListModels(ctx context.Context) ([]Model, error) {
	var tags TagsResponse
	if err := p.getJSON(ctx, "/api/tags", &tags); err != nil {
		return nil, err
	}
	return tags.Models, nil
}

func (p *Provider) postJSON(ctx context.Context, path string, payload, result interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to marshal request", "ollama", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL.JoinPath(path).String(), bytes.NewReader(data))
	if err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to create request", "ollama", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return p.do(req, path, result)
}

func (p *Provider) getJSON(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL.JoinPath(path).String(), http.NoBody)
	if err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to create request", "ollama", err)
	}
	return p.do(req, path, result)
}

func (p *Provider) do(req *http.Request, path string, result interface{}) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, path+" request failed", "ollama", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp, path)
	}
	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to decode response", "ollama", err)
	}
	return nil
}

// decodeError surfaces the server's error message when it sends one.
func decodeError(resp *http.Response, path string) error {
	body, _ := io.ReadAll(resp.Body)

	var errorResp ErrorResponse
	if json.Unmarshal(body, &errorResp) == nil && errorResp.Error != "" {
		return ai.NewProviderError(ai.ErrTypeProvider, errorResp.Error, "ollama")
	}
	return ai.NewProviderError(ai.ErrTypeProvider, fmt.Sprintf("%s request failed with status %d", path, resp.StatusCode), "ollama")
}

func (p *Provider) setHealthy(healthy bool) {
	p.healthMu.Lock()
	p.healthy = healthy
	p.healthMu.Unlock()
}
