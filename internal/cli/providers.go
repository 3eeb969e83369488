package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yildizm/attackmap/internal/ai"
	"github.com/yildizm/attackmap/internal/emoji"
)

func newProvidersCommand() *cobra.Command {
	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "List and check AI providers",
		Long: `List registered embedding providers and check connectivity of the
configured one.`,
	}

	providersCmd.AddCommand(newProvidersListCommand())
	providersCmd.AddCommand(newProvidersCheckCommand())

	return providersCmd
}

func newProvidersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered providers",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := GetGlobalConfig()

			fmt.Printf("%s Registered providers:\n", emoji.GetEmoji("brain"))
			for _, name := range ai.GlobalRegistry().List() {
				marker := "  "
				if name == cfg.Provider.Name {
					marker = emoji.GetEmoji("success") + " "
				}
				fmt.Printf("  %s%s\n", marker, name)
			}
		},
	}
}

func newProvidersCheckCommand() *cobra.Command {
	var timeout time.Duration

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check connectivity of the configured provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetGlobalConfig()

			provider, err := createProvider(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			if err := provider.HealthCheck(ctx); err != nil {
				fmt.Printf("%s %s is unreachable: %v\n", emoji.GetEmoji("error"), cfg.Provider.Name, err)
				return err
			}

			fmt.Printf("%s %s is healthy (embedding model: %s)\n",
				emoji.GetEmoji("success"), cfg.Provider.Name, cfg.Provider.EmbeddingModel)
			return nil
		},
	}

	checkCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "health check timeout")

	return checkCmd
}
