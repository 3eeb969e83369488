package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yildizm/attackmap/internal/emoji"
)

func newCorpusCommand() *cobra.Command {
	corpusCmd := &cobra.Command{
		Use:   "corpus",
		Short: "Manage the ATT&CK technique corpus",
		Long: `Manage the locally cached ATT&CK technique corpus.

The corpus is fetched from the MITRE STIX bundle and cached on disk.
Matches are served from the cache until it expires.`,
	}

	corpusCmd.AddCommand(newCorpusRefreshCommand())
	corpusCmd.AddCommand(newCorpusInfoCommand())

	return corpusCmd
}

func newCorpusRefreshCommand() *cobra.Command {
	var timeout time.Duration

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-download the technique corpus",
		Long:  "Force a fresh download of the ATT&CK STIX bundle, replacing the cached snapshot.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetGlobalConfig()

			if cfg.Corpus.Offline {
				return fmt.Errorf("cannot refresh corpus in offline mode")
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			source := newTechniqueSource(cfg)

			count, err := source.Refresh(ctx)
			if err != nil {
				return fmt.Errorf("failed to refresh corpus: %w", err)
			}

			fmt.Printf("%s Corpus refreshed: %d techniques\n", emoji.GetEmoji("success"), count)
			return nil
		},
	}

	refreshCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "download timeout")

	return refreshCmd
}

func newCorpusInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show corpus cache status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetGlobalConfig()
			source := newTechniqueSource(cfg)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			techniques, err := source.Techniques(ctx)
			if err != nil {
				return fmt.Errorf("failed to load corpus: %w", err)
			}

			fmt.Printf("%s Techniques: %d\n", emoji.GetEmoji("corpus"), len(techniques))
			if fetchedAt := source.FetchedAt(); !fetchedAt.IsZero() {
				fmt.Printf("%s Fetched:    %s\n", emoji.GetEmoji("info"), fetchedAt.Format(time.RFC3339))
			}
			fmt.Printf("%s Cache dir:  %s\n", emoji.GetEmoji("cache"), expandPath(cfg.Storage.CacheDir))
			fmt.Printf("%s TTL:        %s\n", emoji.GetEmoji("info"), cfg.Corpus.TTL)
			if cfg.Corpus.Offline {
				fmt.Printf("%s Offline mode enabled\n", emoji.GetEmoji("warning"))
			}

			return nil
		},
	}
}
