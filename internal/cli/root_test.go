package cli

import (
	"testing"

	"github.com/yildizm/attackmap/internal/config"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand("1.0.0", "abc123", "2026-01-01")

	if cmd.Use != "attackmap" {
		t.Errorf("expected Use 'attackmap', got %q", cmd.Use)
	}

	wantFlags := []string{"config", "verbose", "no-color", "no-emoji", "output"}
	for _, name := range wantFlags {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing persistent flag %q", name)
		}
	}

	wantCommands := []string{"match", "corpus", "watch", "tui", "config", "providers", "version"}
	for _, name := range wantCommands {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestGlobalConfig(t *testing.T) {
	oldGlobalConfig := globalConfig
	defer func() {
		globalConfig = oldGlobalConfig
	}()

	custom := config.DefaultConfig()
	custom.Match.TopK = 7
	SetGlobalConfig(custom)

	got := GetGlobalConfig()
	if got.Match.TopK != 7 {
		t.Errorf("expected TopK 7 from injected config, got %d", got.Match.TopK)
	}
}

func TestIsColorEnabled(t *testing.T) {
	oldGlobalConfig := globalConfig
	oldNoColor := noColor
	defer func() {
		globalConfig = oldGlobalConfig
		noColor = oldNoColor
	}()

	cfg := config.DefaultConfig()
	SetGlobalConfig(cfg)

	noColor = true
	if isColorEnabled() {
		t.Error("expected color disabled when --no-color is set")
	}

	noColor = false
	cfg.Output.ColorMode = "never"
	if isColorEnabled() {
		t.Error("expected color disabled when color_mode is never")
	}

	cfg.Output.ColorMode = "always"
	if !isColorEnabled() {
		t.Error("expected color enabled when color_mode is always")
	}
}
