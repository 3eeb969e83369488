package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := NewLoader().LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig with no files failed: %v", err)
	}

	if cfg.Provider.Name != "ollama" {
		t.Errorf("default provider = %q, want ollama", cfg.Provider.Name)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("default output format = %q, want text", cfg.Output.DefaultFormat)
	}
	if cfg.Match.TopK != 3 {
		t.Errorf("default top_k = %d, want 3", cfg.Match.TopK)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "test-config.yaml")
	content := `version: "1.0"
provider:
  name: "openai"
  embedding_model: "text-embedding-3-large"
  timeout: 45s
match:
  top_k: 5
output:
  default_format: "json"
  verbose: true
corpus:
  offline: true
`
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader().LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Provider.Name != "openai" {
		t.Errorf("provider = %q, want openai", cfg.Provider.Name)
	}
	if cfg.Provider.EmbeddingModel != "text-embedding-3-large" {
		t.Errorf("embedding model = %q, want text-embedding-3-large", cfg.Provider.EmbeddingModel)
	}
	if cfg.Provider.Timeout != 45*time.Second {
		t.Errorf("provider timeout = %v, want 45s", cfg.Provider.Timeout)
	}
	if cfg.Match.TopK != 5 {
		t.Errorf("top_k = %d, want 5", cfg.Match.TopK)
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("output format = %q, want json", cfg.Output.DefaultFormat)
	}
	if !cfg.Output.Verbose {
		t.Error("verbose not applied from file")
	}
	if !cfg.Corpus.Offline {
		t.Error("corpus offline not applied from file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "broken.yaml")
	content := "provider:\n  name: \"openai\noutput:\n  verbose: true\n"
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewLoader().LoadConfig(configPath); err == nil {
		t.Error("expected error loading broken YAML, got nil")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("ATTACKMAP_PROVIDER_NAME", "openai")
	t.Setenv("ATTACKMAP_PROVIDER_EMBEDDING_MODEL", "text-embedding-3-small")
	t.Setenv("ATTACKMAP_PROVIDER_API_KEY", "sk-env")
	t.Setenv("ATTACKMAP_MATCH_TOP_K", "10")
	t.Setenv("ATTACKMAP_OUTPUT_VERBOSE", "true")
	t.Setenv("ATTACKMAP_CORPUS_OFFLINE", "true")
	t.Setenv("ATTACKMAP_WATCH_THRESHOLD", "0.5")

	cfg := DefaultConfig()
	if err := NewLoader().applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides failed: %v", err)
	}

	if cfg.Provider.Name != "openai" {
		t.Errorf("provider = %q, want openai", cfg.Provider.Name)
	}
	if cfg.Provider.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("embedding model = %q, want text-embedding-3-small", cfg.Provider.EmbeddingModel)
	}
	if cfg.Provider.APIKey != "sk-env" {
		t.Errorf("api key = %q, want sk-env", cfg.Provider.APIKey)
	}
	if cfg.Match.TopK != 10 {
		t.Errorf("top_k = %d, want 10", cfg.Match.TopK)
	}
	if !cfg.Output.Verbose {
		t.Error("verbose override not applied")
	}
	if !cfg.Corpus.Offline {
		t.Error("offline override not applied")
	}
	if cfg.Watch.Threshold != 0.5 {
		t.Errorf("watch threshold = %v, want 0.5", cfg.Watch.Threshold)
	}
}

func TestApplyEnvOverridesInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"invalid int", "ATTACKMAP_MATCH_TOP_K", "not-a-number"},
		{"invalid bool", "ATTACKMAP_OUTPUT_VERBOSE", "not-a-bool"},
		{"invalid duration", "ATTACKMAP_PROVIDER_TIMEOUT", "not-a-duration"},
		{"invalid float", "ATTACKMAP_WATCH_THRESHOLD", "not-a-float"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)
			if err := NewLoader().applyEnvOverrides(DefaultConfig()); err == nil {
				t.Errorf("no error for %s=%s", tt.envVar, tt.value)
			}
		})
	}
}

func TestParseHelpers(t *testing.T) {
	var d time.Duration
	if err := parseDuration("30s", &d); err != nil || d != 30*time.Second {
		t.Errorf("parseDuration(30s) = %v, %v", d, err)
	}
	if err := parseDuration("nope", &d); err == nil {
		t.Error("parseDuration accepted garbage")
	}

	var n int
	if err := parseInt("42", &n); err != nil || n != 42 {
		t.Errorf("parseInt(42) = %d, %v", n, err)
	}
	if err := parseInt("nope", &n); err == nil {
		t.Error("parseInt accepted garbage")
	}

	var b bool
	if err := parseBool("true", &b); err != nil || !b {
		t.Errorf("parseBool(true) = %v, %v", b, err)
	}
	if err := parseBool("nope", &b); err == nil {
		t.Error("parseBool accepted garbage")
	}

	var f float64
	if err := parseFloat("0.75", &f); err != nil || f != 0.75 {
		t.Errorf("parseFloat(0.75) = %v, %v", f, err)
	}
	if err := parseFloat("nope", &f); err == nil {
		t.Error("parseFloat accepted garbage")
	}
}

func TestFindConfigFile(t *testing.T) {
	if _, found := FindConfigFile(); found {
		t.Skip("a real config file exists in the search paths")
	}

	local := "./.attackmap.yaml"
	if err := os.WriteFile(local, []byte("version: 1.0"), 0o600); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Remove(local) }()

	path, found := FindConfigFile()
	if !found {
		t.Fatal("config file not found after creating it")
	}
	if path != local {
		t.Errorf("found %q, want %q", path, local)
	}
}

func TestFileExists(t *testing.T) {
	if fileExists("/path/that/does/not/exist") {
		t.Error("fileExists true for missing path")
	}

	f := filepath.Join(t.TempDir(), "present")
	if err := os.WriteFile(f, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if !fileExists(f) {
		t.Error("fileExists false for existing file")
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		errMsg string
	}{
		{"valid yaml file", "config.yaml", ""},
		{"valid yml file", "config.yml", ""},
		{"nested relative path", "./configs/app.yaml", ""},
		{"path traversal", "../../../etc/passwd", "path traversal not allowed"},
		{"wrong extension", "config.txt", "config file must have .yaml or .yml extension"},
		{"system file", "/etc/passwd.yaml", "access to system files not allowed"},
		{"proc filesystem", "/proc/version.yaml", "access to system files not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errMsg)
			}
		})
	}
}
