package config

import (
	"testing"
	"time"
)

func TestTimeoutDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider.Timeout != 60*time.Second {
		t.Errorf("Expected provider timeout 60s, got %v", cfg.Provider.Timeout)
	}

	if cfg.Match.Timeout != 5*time.Minute {
		t.Errorf("Expected match timeout 5m, got %v", cfg.Match.Timeout)
	}

	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected watch debounce 500ms, got %v", cfg.Watch.Debounce)
	}
}

func TestTimeoutValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "negative provider timeout",
			mutate:  func(c *Config) { c.Provider.Timeout = -time.Second },
			wantErr: true,
		},
		{
			name:    "negative match timeout",
			mutate:  func(c *Config) { c.Match.Timeout = -time.Second },
			wantErr: true,
		},
		{
			name:    "negative corpus ttl",
			mutate:  func(c *Config) { c.Corpus.TTL = -time.Hour },
			wantErr: true,
		},
		{
			name:    "negative watch debounce",
			mutate:  func(c *Config) { c.Watch.Debounce = -time.Millisecond },
			wantErr: true,
		},
		{
			name:    "zero timeouts allowed",
			mutate:  func(c *Config) { c.Provider.Timeout = 0; c.Match.Timeout = 0 },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}
