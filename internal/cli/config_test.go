package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/yildizm/attackmap/internal/config"
)

func TestConfigInitCommand(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "config.yaml")

	cmd := newConfigInitCommand()
	cmd.SetArgs([]string{"--output", outputPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("failed to read generated config: %v", err)
	}

	// The sample must round-trip through the real config types.
	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("generated config is not valid YAML: %v", err)
	}
	if cfg.Provider.Name != "ollama" {
		t.Errorf("expected default provider ollama, got %q", cfg.Provider.Name)
	}
	if cfg.Match.TopK != 3 {
		t.Errorf("expected top_k 3, got %d", cfg.Match.TopK)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(outputPath, []byte("existing"), 0o600); err != nil {
		t.Fatalf("failed to seed config file: %v", err)
	}

	cmd := newConfigInitCommand()
	cmd.SetArgs([]string{"--output", outputPath})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error when config file already exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfigInitMinimal(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "minimal.yaml")

	cmd := newConfigInitCommand()
	cmd.SetArgs([]string{"--output", outputPath, "--minimal"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init --minimal failed: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("failed to read generated config: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("minimal config is not valid YAML: %v", err)
	}
	if cfg.Provider.EmbeddingModel != "all-minilm" {
		t.Errorf("expected embedding model all-minilm, got %q", cfg.Provider.EmbeddingModel)
	}
}
