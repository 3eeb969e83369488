package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/yildizm/attackmap/internal/config"
	"github.com/yildizm/attackmap/internal/logger"
)

var (
	globalConfig *config.Config
	configMu     sync.Mutex
)

// GetGlobalConfig returns the loaded configuration, loading it on first
// use. Falls back to defaults when no config file is found or loading
// fails.
func GetGlobalConfig() *config.Config {
	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig != nil {
		return globalConfig
	}

	loader := config.NewLoader()
	cfg, err := loader.LoadConfig(cfgFile)
	if err != nil {
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		}
		cfg = config.DefaultConfig()
	}

	globalConfig = cfg
	return globalConfig
}

// SetGlobalConfig replaces the loaded configuration. Used by tests.
func SetGlobalConfig(cfg *config.Config) {
	configMu.Lock()
	defer configMu.Unlock()
	globalConfig = cfg
}

// GetLogger returns a component logger gated on the verbose flag.
func GetLogger(component string) *logger.Logger {
	return logger.NewWithCallback(component, isVerbose)
}
