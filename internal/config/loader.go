package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths lists the search locations, highest priority first.
var ConfigPaths = []string{
	"./.attackmap.yaml",
	"~/.config/attackmap/config.yaml",
	"/etc/attackmap/config.yaml",
}

// Loader builds a Config by layering defaults, config files, and
// environment variables.
type Loader struct {
	configPaths []string
}

func NewLoader() *Loader {
	return &Loader{configPaths: ConfigPaths}
}

// LoadConfig resolves the effective configuration. Sources, weakest
// first: built-in defaults, /etc, user config, project config, then
// ATTACKMAP_* environment variables. Flags are applied by the caller.
// A non-empty customPath replaces the whole search list.
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	cfg := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := mergeFile(cfg, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Walk the search list backwards so higher-priority files
		// overwrite what lower-priority ones set.
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			path := expandPath(l.configPaths[i])
			if !fileExists(path) {
				continue
			}
			if err := mergeFile(cfg, path); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", path, err)
			}
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// mergeFile overlays one YAML file onto cfg.
func mergeFile(cfg *Config, path string) error {
	// #nosec G304 - search paths are fixed, custom paths pass validateConfigPath
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if overlay.Version != "" {
		cfg.Version = overlay.Version
	}
	cfg.Provider.merge(&overlay.Provider)
	cfg.Corpus.merge(&overlay.Corpus)
	cfg.Match.merge(&overlay.Match)
	cfg.Storage.merge(&overlay.Storage)
	cfg.Output.merge(&overlay.Output)
	cfg.Watch.merge(&overlay.Watch)
	return nil
}

// envOverride binds one environment variable to a config field.
type envOverride struct {
	key string
	set func(*Config, string) error
}

// envOverrides is ordered so failures report deterministically.
var envOverrides = []envOverride{
	{"ATTACKMAP_PROVIDER_NAME", func(c *Config, v string) error { c.Provider.Name = v; return nil }},
	{"ATTACKMAP_PROVIDER_EMBEDDING_MODEL", func(c *Config, v string) error { c.Provider.EmbeddingModel = v; return nil }},
	{"ATTACKMAP_PROVIDER_COMPLETION_MODEL", func(c *Config, v string) error { c.Provider.CompletionModel = v; return nil }},
	{"ATTACKMAP_PROVIDER_ENDPOINT", func(c *Config, v string) error { c.Provider.Endpoint = v; return nil }},
	{"ATTACKMAP_PROVIDER_API_KEY", func(c *Config, v string) error { c.Provider.APIKey = v; return nil }},
	{"ATTACKMAP_PROVIDER_TIMEOUT", func(c *Config, v string) error { return parseDuration(v, &c.Provider.Timeout) }},
	{"ATTACKMAP_CORPUS_BUNDLE_URL", func(c *Config, v string) error { c.Corpus.BundleURL = v; return nil }},
	{"ATTACKMAP_CORPUS_TTL", func(c *Config, v string) error { return parseDuration(v, &c.Corpus.TTL) }},
	{"ATTACKMAP_CORPUS_OFFLINE", func(c *Config, v string) error { return parseBool(v, &c.Corpus.Offline) }},
	{"ATTACKMAP_MATCH_TOP_K", func(c *Config, v string) error { return parseInt(v, &c.Match.TopK) }},
	{"ATTACKMAP_MATCH_MIN_SCORE", func(c *Config, v string) error { return parseFloat(v, &c.Match.MinScore) }},
	{"ATTACKMAP_MATCH_EXPLAIN", func(c *Config, v string) error { return parseBool(v, &c.Match.Explain) }},
	{"ATTACKMAP_MATCH_TIMEOUT", func(c *Config, v string) error { return parseDuration(v, &c.Match.Timeout) }},
	{"ATTACKMAP_STORAGE_CACHE_DIR", func(c *Config, v string) error { c.Storage.CacheDir = v; return nil }},
	{"ATTACKMAP_STORAGE_VECTOR_CACHE_PATH", func(c *Config, v string) error { c.Storage.VectorCachePath = v; return nil }},
	{"ATTACKMAP_STORAGE_TEMP_DIR", func(c *Config, v string) error { c.Storage.TempDir = v; return nil }},
	{"ATTACKMAP_OUTPUT_DEFAULT_FORMAT", func(c *Config, v string) error { c.Output.DefaultFormat = v; return nil }},
	{"ATTACKMAP_OUTPUT_COLOR_MODE", func(c *Config, v string) error { c.Output.ColorMode = v; return nil }},
	{"ATTACKMAP_OUTPUT_VERBOSE", func(c *Config, v string) error { return parseBool(v, &c.Output.Verbose) }},
	{"ATTACKMAP_OUTPUT_SHOW_PROGRESS", func(c *Config, v string) error { return parseBool(v, &c.Output.ShowProgress) }},
	{"ATTACKMAP_WATCH_MIN_LEVEL", func(c *Config, v string) error { c.Watch.MinLevel = v; return nil }},
	{"ATTACKMAP_WATCH_DEBOUNCE", func(c *Config, v string) error { return parseDuration(v, &c.Watch.Debounce) }},
	{"ATTACKMAP_WATCH_THRESHOLD", func(c *Config, v string) error { return parseFloat(v, &c.Watch.Threshold) }},
}

func (l *Loader) applyEnvOverrides(cfg *Config) error {
	for _, o := range envOverrides {
		value := os.Getenv(o.key)
		if value == "" {
			continue
		}
		if err := o.set(cfg, value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", o.key, err)
		}
	}
	return nil
}

// GetConfigPaths returns the expanded search paths in priority order.
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile returns the highest-priority config file that exists.
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		if expanded := expandPath(path); fileExists(expanded) {
			return expanded, true
		}
	}
	return "", false
}

// validateConfigPath rejects custom config paths that escape the
// working tree or point at system files.
func validateConfigPath(path string) error {
	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	switch strings.ToLower(filepath.Ext(clean)) {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	abs, err := filepath.Abs(clean)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	for _, forbidden := range []string{"/etc/passwd", "/etc/shadow", "/proc/", "/sys/"} {
		if strings.HasPrefix(abs, forbidden) {
			return fmt.Errorf("access to system files not allowed")
		}
	}
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Section merges: zero values in the overlay leave the base alone.
// Booleans are copied as-is; yaml cannot distinguish false from unset,
// env overrides cover the explicit-false case.

func (dst *ProviderConfig) merge(src *ProviderConfig) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.EmbeddingModel != "" {
		dst.EmbeddingModel = src.EmbeddingModel
	}
	if src.CompletionModel != "" {
		dst.CompletionModel = src.CompletionModel
	}
	if src.Endpoint != "" {
		dst.Endpoint = src.Endpoint
	}
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
}

func (dst *CorpusConfig) merge(src *CorpusConfig) {
	if src.BundleURL != "" {
		dst.BundleURL = src.BundleURL
	}
	if src.TTL != 0 {
		dst.TTL = src.TTL
	}
	dst.Offline = src.Offline
}

func (dst *MatchConfig) merge(src *MatchConfig) {
	if src.TopK != 0 {
		dst.TopK = src.TopK
	}
	if src.MinScore != 0 {
		dst.MinScore = src.MinScore
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
	dst.Explain = src.Explain
}

func (dst *StorageConfig) merge(src *StorageConfig) {
	if src.CacheDir != "" {
		dst.CacheDir = src.CacheDir
	}
	if src.VectorCachePath != "" {
		dst.VectorCachePath = src.VectorCachePath
	}
	if src.TempDir != "" {
		dst.TempDir = src.TempDir
	}
}

func (dst *OutputConfig) merge(src *OutputConfig) {
	if src.DefaultFormat != "" {
		dst.DefaultFormat = src.DefaultFormat
	}
	if src.ColorMode != "" {
		dst.ColorMode = src.ColorMode
	}
	dst.Verbose = src.Verbose
	dst.ShowProgress = src.ShowProgress
}

func (dst *WatchConfig) merge(src *WatchConfig) {
	if src.MinLevel != "" {
		dst.MinLevel = src.MinLevel
	}
	if src.Debounce != 0 {
		dst.Debounce = src.Debounce
	}
	if src.Threshold != 0 {
		dst.Threshold = src.Threshold
	}
}

func parseInt(s string, dst *int) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func parseBool(s string, dst *bool) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func parseFloat(s string, dst *float64) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
