package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/yildizm/attackmap/internal/ai"
)

type Provider struct {
	config  *Config
	client  *http.Client
	baseURL *url.URL
	healthy bool
	mu      sync.RWMutex
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
		return nil, ai.NewConfigurationError("openai", "base_url", fmt.Sprintf("invalid base URL: %v", err))
	}

	return &Provider{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		baseURL: baseURL,
		healthy: true,
	}, nil
}

func (p *Provider) Name() string {
	return "openai"
}

// Embed encodes a single text into an embedding vector
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ai.NewValidationError("text", "", "text to embed is required")
	}

	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return vectors[0], nil
}

// EmbedBatch encodes multiple texts in a single API call. The
// embeddings endpoint accepts up to 2048 inputs per request, so larger
// batches are chunked.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ai.NewValidationError("texts", "", "at least one text is required")
	}

	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += maxBatchInputs {
		end := start + maxBatchInputs
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := p.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}

		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

func (p *Provider) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	embReq := &EmbeddingRequest{
		Model: p.config.EmbeddingModel,
		Input: texts,
	}

	var result EmbeddingResponse
	if err := p.postJSON(ctx, "/v1/embeddings", embReq, &result); err != nil {
		return nil, err
	}

	if len(result.Data) != len(texts) {
		return nil, ai.NewProviderError(ai.ErrTypeProvider,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(result.Data)), "openai")
	}

	// Responses are not guaranteed to arrive in request order.
	vectors := make([][]float32, len(texts))
	for _, data := range result.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, ai.NewProviderError(ai.ErrTypeProvider,
				fmt.Sprintf("embedding index %d out of range", data.Index), "openai")
		}

		vector := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			vector[i] = float32(v)
		}
		vectors[data.Index] = vector
	}

	return vectors, nil
}

// Complete performs a chat completion
func (p *Provider) Complete(ctx context.Context, req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if req == nil {
		return nil, ai.NewValidationError("request", "nil", "completion request is required")
	}

	model := req.Model
	if model == "" {
		model = p.config.CompletionModel
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.config.Temperature
	}

	chatReq := &ChatCompletionRequest{
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	}
	chatReq.ToMessages(req.SystemPrompt, req.Prompt)

	var result ChatCompletionResponse
	if err := p.postJSON(ctx, "/v1/chat/completions", chatReq, &result); err != nil {
		return nil, err
	}

	return result.ToAIResponse(), nil
}

func (p *Provider) ValidateConfig() error {
	return p.config.Validate()
}

func (p *Provider) Close() error {
	return nil
}

// HealthCheck lists models, which also verifies the API key.
func (p *Provider) HealthCheck(ctx context.Context) error {
	err := p.getJSON(ctx, "/v1/models", nil)
	p.setHealthy(err == nil)
	return err
}

func (p *Provider) IsHealthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.healthy
}

// GetModels returns the models the account can use.
func (p *Provider) GetModels() ([]ai.Model, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.Timeout)
	defer cancel()

	var listResp ModelListResponse
	if err := p.getJSON(ctx, "/v1/models", &listResp); err != nil {
		return nil, err
	}

	models := make([]ai.Model, 0, len(listResp.Data))
	for _, m := range listResp.Data {
		models = append(models, ai.Model{ID: m.ID, OwnedBy: m.OwnedBy})
	}
	return models, nil
}

func (p *Provider) postJSON(ctx context.Context, path string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to marshal request", "openai", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL.JoinPath(path).String(), bytes.NewReader(jsonData))
	if err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to create request", "openai", err)
	}
	return p.do(req, out)
}

func (p *Provider) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL.JoinPath(path).String(), http.NoBody)
	if err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to create request", "openai", err)
	}
	return p.do(req, out)
}

func (p *Provider) do(req *http.Request, out interface{}) error {
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "request failed", "openai", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return p.decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to decode response", "openai", err)
	}
	return nil
}

func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	if p.config.OrganizationID != "" {
		req.Header.Set("OpenAI-Organization", p.config.OrganizationID)
	}
}

func (p *Provider) decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errorResp ErrorResponse
	if json.Unmarshal(body, &errorResp) == nil && errorResp.Error.Message != "" {
		errType := ai.ErrTypeProvider
		if resp.StatusCode == http.StatusUnauthorized {
			errType = ai.ErrTypeAuthentication
		}

		providerErr := ai.NewProviderError(errType, errorResp.Error.Message, "openai")
		providerErr.StatusCode = resp.StatusCode
		return providerErr
	}

	providerErr := ai.NewProviderError(ai.ErrTypeProvider, fmt.Sprintf("request failed with status %d", resp.StatusCode), "openai")
	providerErr.StatusCode = resp.StatusCode
	return providerErr
}

func (p *Provider) setHealthy(healthy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.healthy = healthy
}
