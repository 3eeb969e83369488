package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/attackmap/internal/matcher"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = true
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(result *matcher.Result) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b)
	f.writeQuery(&b, result)
	f.writeMatches(&b, result)
	f.writeSummary(&b, result)
	f.writeExplanation(&b, result)

	return []byte(b.String()), nil
}

// writeHeader writes a box-drawn header
func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	header := "ATT&CK Technique Map"
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

func (f *terminalFormatter) writeQuery(b *strings.Builder, result *matcher.Result) {
	symbol := termfmt.GetEmoji("pattern", f.opts)
	if symbol == "" {
		symbol = "🔍" // Fallback
	}
	b.WriteString(symbol + " Behavior\n")
	b.WriteString(result.Query + "\n\n")
}

// writeMatches writes one block per match: ID, Name, Tactic and
// Similarity lines, blank-line separated.
func (f *terminalFormatter) writeMatches(b *strings.Builder, result *matcher.Result) {
	symbol := termfmt.GetEmoji("target", f.opts)
	if symbol == "" {
		symbol = "🎯" // Fallback
	}
	b.WriteString(symbol + " Top Techniques\n\n")

	if len(result.Matches) == 0 {
		b.WriteString("No matching techniques found.\n\n")
		return
	}

	for i, match := range result.Matches {
		b.WriteString(matchBlock(match))
		b.WriteString(createSimilarityBar(match.Similarity, f.opts) + "\n")
		if i < len(result.Matches)-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
}

// writeSummary writes run statistics with tree-style formatting using go-termfmt
func (f *terminalFormatter) writeSummary(b *strings.Builder, result *matcher.Result) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Summary\n")

	items := []termfmt.TreeItem{
		{Label: "Techniques Scored", Value: formatNumber(result.CorpusSize)},
		{Label: "Matches Returned", Value: fmt.Sprintf("%d", len(result.Matches))},
		{Label: "Elapsed", Value: result.Elapsed.Round(10 * time.Millisecond).String(), Last: true},
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n")
}

// writeExplanation writes the LLM rationale when one was generated
func (f *terminalFormatter) writeExplanation(b *strings.Builder, result *matcher.Result) {
	if result.Explanation == "" {
		return
	}

	symbol := termfmt.GetEmoji("brain", f.opts)
	if symbol == "" {
		symbol = "🧠" // Fallback
	}
	fmt.Fprintf(b, "\n%s Rationale\n", symbol)
	b.WriteString(strings.Repeat("─", 50) + "\n")
	b.WriteString(result.Explanation + "\n")
}
