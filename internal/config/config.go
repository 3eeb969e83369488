package config

import (
	"fmt"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version  string         `yaml:"version" json:"version"`
	Provider ProviderConfig `yaml:"provider" json:"provider"`
	Corpus   CorpusConfig   `yaml:"corpus" json:"corpus"`
	Match    MatchConfig    `yaml:"match" json:"match"`
	Storage  StorageConfig  `yaml:"storage" json:"storage"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Watch    WatchConfig    `yaml:"watch" json:"watch"`
}

// ProviderConfig configures the embedding/completion provider
type ProviderConfig struct {
	Name            string        `yaml:"name" json:"name"`                         // ollama|openai
	EmbeddingModel  string        `yaml:"embedding_model" json:"embedding_model"`   // sentence-embedding model
	CompletionModel string        `yaml:"completion_model" json:"completion_model"` // model for --explain
	Endpoint        string        `yaml:"endpoint" json:"endpoint"`                 // API endpoint URL
	APIKey          string        `yaml:"api_key" json:"api_key"`                   // API key (support env var reference)
	Timeout         time.Duration `yaml:"timeout" json:"timeout"`                   // request timeout
}

// CorpusConfig configures the ATT&CK technique feed
type CorpusConfig struct {
	BundleURL string        `yaml:"bundle_url" json:"bundle_url"` // STIX bundle location
	TTL       time.Duration `yaml:"ttl" json:"ttl"`               // cache freshness window
	Offline   bool          `yaml:"offline" json:"offline"`       // never hit the network
}

// MatchConfig configures ranking behavior
type MatchConfig struct {
	TopK     int           `yaml:"top_k" json:"top_k"`         // matches to return
	MinScore float64       `yaml:"min_score" json:"min_score"` // drop matches below this similarity (0 disables)
	Explain  bool          `yaml:"explain" json:"explain"`     // generate LLM rationale
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`     // end-to-end match timeout
}

// StorageConfig configures local caches
type StorageConfig struct {
	CacheDir        string `yaml:"cache_dir" json:"cache_dir"`                 // corpus snapshot directory
	VectorCachePath string `yaml:"vector_cache_path" json:"vector_cache_path"` // technique embedding cache
	TempDir         string `yaml:"temp_dir" json:"temp_dir"`                   // temporary file location
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // json|text|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`               // default verbosity
	ShowProgress  bool   `yaml:"show_progress" json:"show_progress"`   // show progress bars
}

// WatchConfig configures alert-log watching
type WatchConfig struct {
	MinLevel  string        `yaml:"min_level" json:"min_level"` // warn|error
	Debounce  time.Duration `yaml:"debounce" json:"debounce"`   // file event settle time
	Threshold float64       `yaml:"threshold" json:"threshold"` // minimum similarity to report
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Provider: ProviderConfig{
			Name:            "ollama",
			EmbeddingModel:  "all-minilm",
			CompletionModel: "llama3.2",
			Endpoint:        "http://localhost:11434",
			APIKey:          "",
			Timeout:         60 * time.Second,
		},
		Corpus: CorpusConfig{
			BundleURL: "",
			TTL:       7 * 24 * time.Hour,
			Offline:   false,
		},
		Match: MatchConfig{
			TopK:     3,
			MinScore: 0,
			Explain:  false,
			Timeout:  5 * time.Minute,
		},
		Storage: StorageConfig{
			CacheDir:        "~/.cache/attackmap",
			VectorCachePath: "~/.cache/attackmap/vectors.json",
			TempDir:         "/tmp/attackmap",
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
			ShowProgress:  true,
		},
		Watch: WatchConfig{
			MinLevel:  "warn",
			Debounce:  500 * time.Millisecond,
			Threshold: 0.35,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateProviderConfig(); err != nil {
		return err
	}
	if err := c.validateMatchConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateWatchConfig(); err != nil {
		return err
	}
	return nil
}

// validateProviderConfig validates provider-related configuration
func (c *Config) validateProviderConfig() error {
	if c.Provider.Name != "" {
		validProviders := map[string]bool{
			"ollama": true,
			"openai": true,
		}
		if !validProviders[c.Provider.Name] {
			return fmt.Errorf("invalid provider: %s (must be one of: ollama, openai)", c.Provider.Name)
		}
	}
	if c.Provider.Timeout < 0 {
		return fmt.Errorf("provider timeout must be non-negative")
	}
	return nil
}

// validateMatchConfig validates ranking configuration
func (c *Config) validateMatchConfig() error {
	if c.Match.TopK < 1 {
		return fmt.Errorf("top_k must be greater than 0")
	}
	if c.Match.MinScore < 0 || c.Match.MinScore > 1 {
		return fmt.Errorf("min_score must be between 0 and 1")
	}
	if c.Match.Timeout < 0 {
		return fmt.Errorf("match timeout must be non-negative")
	}
	if c.Corpus.TTL < 0 {
		return fmt.Errorf("corpus ttl must be non-negative")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}

// validateWatchConfig validates watch-related configuration
func (c *Config) validateWatchConfig() error {
	if c.Watch.MinLevel != "" {
		validLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
			"fatal": true,
		}
		if !validLevels[c.Watch.MinLevel] {
			return fmt.Errorf("invalid watch min_level: %s", c.Watch.MinLevel)
		}
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must be non-negative")
	}
	if c.Watch.Threshold < 0 || c.Watch.Threshold > 1 {
		return fmt.Errorf("watch threshold must be between 0 and 1")
	}
	return nil
}
