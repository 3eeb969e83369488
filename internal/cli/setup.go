package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yildizm/attackmap/internal/ai"
	"github.com/yildizm/attackmap/internal/attack"
	"github.com/yildizm/attackmap/internal/config"
	"github.com/yildizm/attackmap/internal/logger"
	"github.com/yildizm/attackmap/internal/matcher"
	"github.com/yildizm/attackmap/internal/runner"
	"github.com/yildizm/attackmap/internal/vectorstore"
)

// createProvider builds the configured AI provider from the registry.
func createProvider(cfg *config.Config) (ai.Provider, error) {
	providerConfig := &ai.ProviderConfig{
		Name:            cfg.Provider.Name,
		Type:            cfg.Provider.Name,
		APIKey:          cfg.Provider.APIKey,
		BaseURL:         cfg.Provider.Endpoint,
		EmbeddingModel:  cfg.Provider.EmbeddingModel,
		CompletionModel: cfg.Provider.CompletionModel,
		Timeout:         cfg.Provider.Timeout,
	}

	provider, err := ai.GlobalRegistry().GetWithConfig(cfg.Provider.Name, providerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", cfg.Provider.Name, err)
	}

	log := GetLogger("setup")
	log.DebugWithFields("provider created", []logger.Field{
		logger.F("provider", cfg.Provider.Name),
		logger.F("embedding_model", cfg.Provider.EmbeddingModel),
	})

	return provider, nil
}

// verifyProviderHealth pings the provider. Failure is a warning, not a
// hard error; a local model may still come up before the first request.
func verifyProviderHealth(ctx context.Context, provider ai.Provider) {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := provider.HealthCheck(healthCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: provider health check failed: %v\n", err)
	}
}

// newTechniqueSource builds the cached ATT&CK technique feed.
func newTechniqueSource(cfg *config.Config) *attack.CachedSource {
	var clientOpts []attack.ClientOption
	if cfg.Corpus.BundleURL != "" {
		clientOpts = append(clientOpts, attack.WithBundleURL(cfg.Corpus.BundleURL))
	}
	if cfg.Provider.Timeout > 0 {
		clientOpts = append(clientOpts, attack.WithTimeout(cfg.Provider.Timeout))
	}

	client := attack.NewClient(clientOpts...)

	return attack.NewCachedSource(client, attack.CachedSourceOptions{
		CacheDir: expandPath(cfg.Storage.CacheDir),
		TTL:      cfg.Corpus.TTL,
		Offline:  cfg.Corpus.Offline,
	})
}

// newMatcher builds a matcher with a persistent embedding cache. The
// returned save func flushes newly computed technique vectors to disk.
func newMatcher(cfg *config.Config, provider ai.EmbeddingProvider, source attack.Source, topK int, minScore float32) (*matcher.Matcher, func(), error) {
	store := vectorstore.NewMemoryStore()

	log := GetLogger("matcher")

	cachePath := expandPath(cfg.Storage.VectorCachePath)
	if cachePath != "" {
		if err := store.LoadFromFile(cachePath); err != nil {
			log.Debug("starting with an empty vector cache: %v", err)
		} else {
			log.DebugWithFields("vector cache loaded", []logger.Field{logger.Count(store.Size())})
		}
	}

	m, err := matcher.New(provider, source,
		matcher.WithTopK(topK),
		matcher.WithMinScore(minScore),
		matcher.WithCache(store),
		matcher.WithCacheNamespace(cfg.Provider.Name+"/"+cfg.Provider.EmbeddingModel),
	)
	if err != nil {
		return nil, nil, err
	}

	save := func() {
		if cachePath == "" {
			return
		}
		if err := os.MkdirAll(filepath.Dir(cachePath), 0o750); err != nil {
			return
		}
		if err := store.SaveToFile(cachePath); err != nil {
			log.Warn("failed to save vector cache: %v", err)
		}
	}

	return m, save, nil
}

// newRunner wires the matcher into a single-slot runner.
func newRunner(m *matcher.Matcher) *runner.Runner {
	return runner.New(func(ctx context.Context, query string, onProgress matcher.ProgressFunc) (*matcher.Result, error) {
		return m.Match(ctx, query, onProgress)
	})
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
