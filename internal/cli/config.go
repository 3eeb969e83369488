package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yildizm/attackmap/internal/config"
	"github.com/yildizm/attackmap/internal/emoji"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage AttackMap configuration",
		Long:  "Initialize, inspect, and validate AttackMap configuration files.",
	}

	configCmd.AddCommand(
		newConfigInitCommand(),
		newConfigShowCommand(),
		newConfigValidateCommand(),
		newConfigPathCommand(),
	)
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		outputPath string
		minimal    bool
		force      bool
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new configuration file",
		Long: `Write a starter configuration file with default values.

The full sample documents every option; --minimal writes only the
settings most installs change.`,
		Example: `  attackmap config init
  attackmap config init --minimal
  attackmap config init --output ~/.config/attackmap/config.yaml
  attackmap config init --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				outputPath = ".attackmap.yaml"
			}
			if !force && fileExists(outputPath) {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", outputPath)
			}

			if dir := filepath.Dir(outputPath); dir != "." && dir != "/" {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return fmt.Errorf("failed to create directory %s: %w", dir, err)
				}
			}

			sample := config.SampleConfig()
			if minimal {
				sample = config.MinimalSampleConfig()
			}
			if err := os.WriteFile(outputPath, []byte(sample), 0o600); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			fmt.Printf("%s Configuration file created at: %s\n", emoji.GetEmoji("success"), outputPath)
			return nil
		},
	}

	initCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path for config file (default: .attackmap.yaml)")
	initCmd.Flags().BoolVarP(&minimal, "minimal", "m", false, "create minimal configuration")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing config file")
	return initCmd
}

func newConfigShowCommand() *cobra.Command {
	var (
		format     string
		configPath string
	)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Print the merged configuration: defaults, then config files in
priority order, then ATTACKMAP_* environment overrides.`,
		Example: `  attackmap config show
  attackmap config show --format json
  attackmap config show --config /path/to/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			var data []byte
			switch format {
			case "yaml":
				data, err = yaml.Marshal(cfg)
			case "json":
				data, err = json.MarshalIndent(cfg, "", "  ")
				data = append(data, '\n')
			default:
				return fmt.Errorf("unsupported format: %s (use json or yaml)", format)
			}
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Print(string(data))
			return nil
		},
	}

	showCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml, json)")
	showCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return showCmd
}

func newConfigValidateCommand() *cobra.Command {
	var configPath string

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long:  "Load the configuration and report syntax or value errors.",
		Example: `  attackmap config validate
  attackmap config validate --config /path/to/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().LoadConfig(configPath)
			if err != nil {
				fmt.Printf("%s Configuration validation failed:\n   %v\n", emoji.GetEmoji("error"), err)
				return err
			}

			fmt.Printf("%s Configuration is valid\n\n", emoji.GetEmoji("success"))
			fmt.Printf("   Provider:        %s\n", cfg.Provider.Name)
			fmt.Printf("   Embedding model: %s\n", cfg.Provider.EmbeddingModel)
			fmt.Printf("   Output format:   %s\n", cfg.Output.DefaultFormat)
			fmt.Printf("   Top K:           %d\n", cfg.Match.TopK)
			return nil
		},
	}

	validateCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return validateCmd
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Long:  "List the search paths in priority order and mark the ones that exist.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Configuration file search paths (highest priority first):")
			for i, path := range config.GetConfigPaths() {
				marker := emoji.GetEmoji("error")
				if fileExists(path) {
					marker = emoji.GetEmoji("success")
				}
				fmt.Printf("  %d. %s %s\n", i+1, marker, path)
			}

			fmt.Println()
			if current, found := config.FindConfigFile(); found {
				fmt.Printf("Active config file: %s\n", current)
			} else {
				fmt.Println("No config file found, using defaults")
			}
			fmt.Println("Environment variables with the ATTACKMAP_ prefix override file settings")
		},
	}
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
