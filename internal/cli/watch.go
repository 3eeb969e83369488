package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/yildizm/attackmap/internal/emoji"
	"github.com/yildizm/attackmap/internal/logger"
	"github.com/yildizm/attackmap/internal/matcher"
	"github.com/yildizm/go-logparser"
)

var (
	watchMinLevel  string
	watchThreshold float64
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Watch an alert log and map new entries to techniques",
		Long: `Monitor an alert log file and map new warning and error entries to
ATT&CK techniques as they are written.

Uses file system notifications to detect changes. Entries below the
minimum level are ignored; matches below the similarity threshold are
not reported. Press Ctrl+C to stop watching.

Examples:
  attackmap watch alerts.log
  attackmap watch --min-level error --threshold 0.5 ids.log`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().StringVar(&watchMinLevel, "min-level", "", "minimum log level to match (debug, info, warn, error)")
	cmd.Flags().Float64Var(&watchThreshold, "threshold", 0, "minimum similarity to report a technique")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	minLevel := watchMinLevel
	if !cmd.Flag("min-level").Changed || minLevel == "" {
		minLevel = cfg.Watch.MinLevel
	}
	threshold := watchThreshold
	if !cmd.Flag("threshold").Changed || threshold <= 0 {
		threshold = cfg.Watch.Threshold
	}

	log := GetLogger("watch")

	wf, err := openWatchedFile(args[0], log)
	if err != nil {
		return err
	}
	defer wf.Close()

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

	w := &alertWatcher{
		matcher:   m,
		minLevel:  parseLogLevel(minLevel),
		threshold: float32(threshold),
		debounce:  cfg.Watch.Debounce,
		log:       log,
	}

	return w.run(wf.watcher, wf.file)
}

// Log level ranks used to filter entries, lowest to highest.
const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
	levelFatal
)

// parseLogLevel ranks a level string. Unknown levels rank as info so
// unlabeled entries are only matched when the minimum is lowered.
func parseLogLevel(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return levelDebug
	case "warn", "warning":
		return levelWarn
	case "error", "err":
		return levelError
	case "fatal", "panic", "critical":
		return levelFatal
	default:
		return levelInfo
	}
}

// alertWatcher maps new alert-log entries to techniques.
type alertWatcher struct {
	matcher   *matcher.Matcher
	minLevel  int
	threshold float32
	debounce  time.Duration
	log       *logger.Logger

	parser logparser.Parser
}

// run is the main watch loop. Write events arm a debounce timer so a
// burst of appends is read once, after the file settles.
func (w *alertWatcher) run(watcher *fsnotify.Watcher, file *os.File) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-signals:
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Write != fsnotify.Write {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			if err := w.processNewLines(ctx, file); err != nil && isVerbose() {
				fmt.Fprintf(os.Stderr, "Error processing new lines: %v\n", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
			}
		}
	}
}

// processNewLines reads appended lines and matches qualifying entries.
func (w *alertWatcher) processNewLines(ctx context.Context, file *os.File) error {
	scanner := bufio.NewScanner(file)

	var newLines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			newLines = append(newLines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	if len(newLines) == 0 {
		return nil
	}

	if w.parser == nil {
		w.parser = logparser.New()
	}

	entries, err := w.parser.ParseString(strings.Join(newLines, "\n"))
	if err != nil {
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Failed to parse lines: %v\n", err)
		}
		return nil
	}

	for i := range entries {
		entry := &entries[i]
		if parseLogLevel(entry.Level) < w.minLevel {
			continue
		}
		w.matchEntry(ctx, entry)
	}

	return nil
}

// matchEntry runs one entry through the matcher and prints techniques
// above the similarity threshold.
func (w *alertWatcher) matchEntry(ctx context.Context, entry *logparser.LogEntry) {
	result, err := w.matcher.Match(ctx, entry.Message, nil)
	if err != nil {
		w.log.Debug("match failed: %v", err)
		return
	}

	if len(result.Matches) > 0 {
		top := &result.Matches[0]
		w.log.DebugWithFields("entry matched", []logger.Field{
			logger.Technique(top.Technique.ID),
			logger.Score(top.Similarity),
			logger.Duration(result.Elapsed),
		})
	}

	timestamp := entry.Timestamp.Format("15:04:05")
	fmt.Printf("[%s] %s %s\n", timestamp, severityEmoji(parseLogLevel(entry.Level)), entry.Message)

	reported := 0
	for i := range result.Matches {
		match := &result.Matches[i]
		if match.Similarity < w.threshold {
			continue
		}
		fmt.Printf("    %s %s %s (%s) similarity %.4f\n",
			emoji.GetEmoji("technique"), match.Technique.ID, match.Technique.Name,
			match.Technique.TacticList(), match.Similarity)
		reported++
	}
	if reported == 0 {
		fmt.Printf("    %s no technique above threshold\n", emoji.GetEmoji("info"))
	}
}

// severityEmoji returns an emoji for a level rank.
func severityEmoji(level int) string {
	switch {
	case level >= levelError:
		return emoji.GetEmoji("error")
	case level == levelWarn:
		return emoji.GetEmoji("warning")
	default:
		return emoji.GetEmoji("info")
	}
}

// watchedFile bundles the fsnotify watcher and the tailed file so the
// command has one handle to close.
type watchedFile struct {
	watcher *fsnotify.Watcher
	file    *os.File
	log     *logger.Logger
}

// openWatchedFile validates the path, registers it with fsnotify, and
// seeks to the end so only new entries are matched.
func openWatchedFile(filename string, log *logger.Logger) (*watchedFile, error) {
	if err := validateWatchFilePath(filename); err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filename); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch file: %w", err)
	}

	// #nosec G304 - path was validated above
	file, err := os.Open(filename)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		_ = watcher.Close()
		_ = file.Close()
		return nil, fmt.Errorf("failed to seek to end of file: %w", err)
	}

	log.Info("watching %s, press Ctrl+C to stop", filename)
	return &watchedFile{watcher: watcher, file: file, log: log}, nil
}

func (wf *watchedFile) Close() {
	if err := wf.watcher.Close(); err != nil {
		wf.log.Warn("failed to close watcher: %v", err)
	}
	if err := wf.file.Close(); err != nil {
		wf.log.Warn("failed to close file: %v", err)
	}
}

// validateWatchFilePath rejects paths that are empty, escape the
// working tree, or are not regular files.
func validateWatchFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	info, err := os.Stat(clean)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot watch directory, must be a file")
	}
	return nil
}
