package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/yildizm/attackmap/internal/ui"
)

func newTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive technique matching",
		Long: `Start the interactive terminal UI.

Type a behavior description and press Enter to match it. Submitting a
new description while a match is running replaces the old request.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetGlobalConfig()

			if theme := cfg.Output.ColorMode; theme == "never" || noColor {
				ui.SetThemeByName("minimal")
			}

			provider, err := createProvider(cfg)
			if err != nil {
				return err
			}

			source := newTechniqueSource(cfg)

			m, saveCache, err := newMatcher(cfg, provider, source, cfg.Match.TopK, float32(cfg.Match.MinScore))
			if err != nil {
				return err
			}
			defer saveCache()

			r := newRunner(m)
			defer r.Shutdown()

			return ui.Run(context.Background(), r)
		},
	}
}
