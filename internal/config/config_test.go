package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider.Name != "ollama" {
		t.Errorf("provider = %q, want ollama", cfg.Provider.Name)
	}
	if cfg.Provider.EmbeddingModel != "all-minilm" {
		t.Errorf("embedding model = %q, want all-minilm", cfg.Provider.EmbeddingModel)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("output format = %q, want text", cfg.Output.DefaultFormat)
	}
	if cfg.Match.TopK != 3 {
		t.Errorf("top_k = %d, want 3", cfg.Match.TopK)
	}
	if cfg.Corpus.TTL != 7*24*time.Hour {
		t.Errorf("corpus TTL = %v, want one week", cfg.Corpus.TTL)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	valid := func() *Config { return DefaultConfig() }

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid config", func(c *Config) {}, ""},
		{"unknown provider", func(c *Config) { c.Provider.Name = "invalid" },
			"invalid provider: invalid (must be one of: ollama, openai)"},
		{"unknown output format", func(c *Config) { c.Output.DefaultFormat = "invalid" },
			"invalid output format: invalid (must be one of: json, text, markdown, csv)"},
		{"unknown color mode", func(c *Config) { c.Output.ColorMode = "invalid" },
			"invalid color mode: invalid (must be one of: auto, always, never)"},
		{"zero top_k", func(c *Config) { c.Match.TopK = 0 },
			"top_k must be greater than 0"},
		{"unknown watch level", func(c *Config) { c.Watch.MinLevel = "loud" },
			"invalid watch min_level: loud"},
		{"watch threshold above 1", func(c *Config) { c.Watch.Threshold = 1.5 },
			"watch threshold must be between 0 and 1"},
		{"min_score above 1", func(c *Config) { c.Match.MinScore = 1.5 },
			"min_score must be between 0 and 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if err.Error() != tt.errMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestSectionMerge(t *testing.T) {
	dst := DefaultConfig()

	overlay := &Config{
		Provider: ProviderConfig{
			Name:           "openai",
			EmbeddingModel: "text-embedding-3-small",
		},
		Match: MatchConfig{TopK: 5},
		Output: OutputConfig{
			DefaultFormat: "json",
			Verbose:       true,
		},
	}

	dst.Provider.merge(&overlay.Provider)
	dst.Match.merge(&overlay.Match)
	dst.Output.merge(&overlay.Output)

	if dst.Provider.Name != "openai" {
		t.Errorf("provider = %q, want openai", dst.Provider.Name)
	}
	if dst.Provider.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("embedding model = %q, want text-embedding-3-small", dst.Provider.EmbeddingModel)
	}
	if dst.Match.TopK != 5 {
		t.Errorf("top_k = %d, want 5", dst.Match.TopK)
	}
	if dst.Output.DefaultFormat != "json" {
		t.Errorf("output format = %q, want json", dst.Output.DefaultFormat)
	}
	if !dst.Output.Verbose {
		t.Error("verbose not merged")
	}

	// Zero values in the overlay must not clobber defaults.
	if dst.Provider.Timeout != 60*time.Second {
		t.Errorf("provider timeout = %v, want 60s untouched", dst.Provider.Timeout)
	}
	if dst.Provider.CompletionModel != "llama3.2" {
		t.Errorf("completion model = %q, want llama3.2 untouched", dst.Provider.CompletionModel)
	}
}

func TestExpandPath(t *testing.T) {
	if got := expandPath("./config.yaml"); got != "./config.yaml" {
		t.Errorf("relative path changed: %q", got)
	}
	if got := expandPath("/etc/attackmap/config.yaml"); got != "/etc/attackmap/config.yaml" {
		t.Errorf("absolute path changed: %q", got)
	}
	if got := expandPath("~/.config/attackmap/config.yaml"); strings.HasPrefix(got, "~") {
		t.Errorf("tilde not expanded: %q", got)
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := GetConfigPaths()
	if len(paths) != 3 {
		t.Fatalf("got %d config paths, want 3", len(paths))
	}

	if paths[0] != "./.attackmap.yaml" {
		t.Errorf("first path = %q, want ./.attackmap.yaml", paths[0])
	}
	if strings.HasPrefix(paths[1], "~") {
		t.Errorf("user path not expanded: %q", paths[1])
	}
	if paths[2] != "/etc/attackmap/config.yaml" {
		t.Errorf("system path = %q, want /etc/attackmap/config.yaml", paths[2])
	}
}
