package ai

import (
	"context"
	"io"
)

// EmbeddingProvider defines the interface for sentence-embedding backends
type EmbeddingProvider interface {
	// Name returns the provider name (e.g., "ollama", "openai")
	Name() string

	// Embed encodes a single text into a fixed-dimension vector
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch encodes multiple texts, preserving input order
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer performs text completion; used for optional match rationale
type Completer interface {
	// Complete performs a single completion request
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// HealthChecker provides health checking capabilities
type HealthChecker interface {
	// HealthCheck verifies provider connectivity and status
	HealthCheck(ctx context.Context) error

	// IsHealthy returns current health status
	IsHealthy() bool
}

// Provider combines all provider capabilities. Implementations must be
// safe for concurrent use; ranking pipelines share one instance across
// request goroutines.
type Provider interface {
	EmbeddingProvider
	Completer
	HealthChecker

	// ValidateConfig validates the provider configuration
	ValidateConfig() error

	io.Closer
}
