package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/yildizm/attackmap/internal/ai"
	"github.com/yildizm/attackmap/internal/emoji"
	"github.com/yildizm/attackmap/internal/formatter"
	"github.com/yildizm/attackmap/internal/logger"
	"github.com/yildizm/attackmap/internal/matcher"
)

var (
	matchTopK       int
	matchMinScore   float64
	matchExplain    bool
	matchOffline    bool
	matchTimeout    time.Duration
	matchOutputFile string
	matchNoProgress bool
)

func newMatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match [description]",
		Short: "Match a behavior description against ATT&CK techniques",
		Long: `Match a free-text description of attacker behavior against the
ATT&CK technique corpus and print the closest techniques.

If no description is given as an argument, reads it from stdin.

Examples:
  attackmap match "adversary dumped lsass memory for credentials"
  attackmap match --explain "powershell download cradle fetched a payload"
  echo "registry run key persistence" | attackmap match
  attackmap match --top-k 5 -o json "dns tunneling for c2"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runMatch,
	}

	cmd.Flags().IntVarP(&matchTopK, "top-k", "k", 0, "number of techniques to return (default from config)")
	cmd.Flags().Float64Var(&matchMinScore, "min-score", 0, "drop matches below this similarity")
	cmd.Flags().BoolVar(&matchExplain, "explain", false, "generate an LLM rationale for the top matches")
	cmd.Flags().BoolVar(&matchOffline, "offline", false, "serve the corpus from the local snapshot only")
	cmd.Flags().DurationVar(&matchTimeout, "timeout", 0, "end-to-end match timeout (default from config)")
	cmd.Flags().StringVar(&matchOutputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().BoolVar(&matchNoProgress, "no-progress", false, "suppress progress output")

	return cmd
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	topK := matchTopK
	if !cmd.Flag("top-k").Changed || topK <= 0 {
		topK = cfg.Match.TopK
	}
	timeout := matchTimeout
	if !cmd.Flag("timeout").Changed || timeout <= 0 {
		timeout = cfg.Match.Timeout
	}
	minScore := matchMinScore
	if !cmd.Flag("min-score").Changed {
		minScore = cfg.Match.MinScore
	}
	explain := matchExplain || cfg.Match.Explain
	if matchOffline {
		cfg.Corpus.Offline = true
	}

	query, err := readQuery(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	provider, err := createProvider(cfg)
	if err != nil {
		return err
	}
	if isVerbose() {
		verifyProviderHealth(ctx, provider)
	}

	source := newTechniqueSource(cfg)

	m, saveCache, err := newMatcher(cfg, provider, source, topK, float32(minScore))
	if err != nil {
		return err
	}
	defer saveCache()

	r := newRunner(m)
	defer r.Shutdown()

	task, err := r.Submit(ctx, query)
	if err != nil {
		return err
	}

	reportProgress(task.Progress())

	<-task.Done()
	if err := task.Err(); err != nil {
		return fmt.Errorf("match failed: %w", err)
	}
	result := task.Result()

	if explain {
		addExplanation(ctx, provider, result)
	}

	return writeResult(result)
}

// readQuery takes the description from args or, failing that, stdin.
func readQuery(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Reading description from stdin...\n")
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read description from stdin: %w", err)
	}

	query := strings.TrimSpace(string(data))
	if query == "" {
		return "", matcher.ErrEmptyQuery
	}
	return query, nil
}

// reportProgress drains the progress channel to stderr. The channel is
// closed when the task finishes, so this never outlives the match.
func reportProgress(progress <-chan int) {
	cfg := GetGlobalConfig()
	if matchNoProgress || !cfg.Output.ShowProgress {
		for range progress {
		}
		return
	}

	for percent := range progress {
		var stage string
		switch percent {
		case matcher.ProgressQueryEmbedded:
			stage = "query embedded"
		case matcher.ProgressCorpusLoaded:
			stage = "corpus loaded"
		case matcher.ProgressComplete:
			stage = "ranking complete"
		default:
			stage = "working"
		}
		fmt.Fprintf(os.Stderr, "%s [%3d%%] %s\n", emoji.GetEmoji("search"), percent, stage)
	}
}

// addExplanation asks the completion model for a rationale. Explanation
// failures never fail the match; the ranked result stands on its own.
func addExplanation(ctx context.Context, completer ai.Completer, result *matcher.Result) {
	explainer := matcher.NewExplainer(completer)

	explanation, err := explainer.Explain(ctx, result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: explanation failed: %v\n", err)
		return
	}
	result.Explanation = explanation
}

func writeResult(result *matcher.Result) error {
	f, err := formatter.New(getOutputFormat(), isColorEnabled())
	if err != nil {
		return err
	}

	output, err := f.Format(result)
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}

	if matchOutputFile != "" {
		if err := os.WriteFile(matchOutputFile, output, 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log := GetLogger("match")
		log.InfoWithFields("output saved", []logger.Field{logger.F("path", matchOutputFile)})
		return nil
	}

	_, err = os.Stdout.Write(output)
	return err
}
