package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/attackmap/internal/matcher"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(result *matcher.Result) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# ATT&CK Technique Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	b.WriteString("## Behavior\n\n")
	b.WriteString("> " + result.Query + "\n\n")

	f.writeMatchTable(&b, result)
	f.writeMatchDetails(&b, result)

	if result.Explanation != "" {
		b.WriteString("## Rationale\n\n")
		b.WriteString(result.Explanation + "\n\n")
	}

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "Scored %d techniques in %s.\n", result.CorpusSize, result.Elapsed.Round(time.Millisecond))

	return []byte(b.String()), nil
}

// writeMatchTable writes the ranked matches as a Markdown table
func (f *markdownFormatter) writeMatchTable(b *strings.Builder, result *matcher.Result) {
	b.WriteString("## Top Techniques\n\n")

	if len(result.Matches) == 0 {
		b.WriteString("No matching techniques found.\n\n")
		return
	}

	b.WriteString("| Rank | ID | Name | Tactic | Similarity |\n")
	b.WriteString("|------|-----|------|--------|------------|\n")

	for i, match := range result.Matches {
		fmt.Fprintf(b, "| %d | [%s](%s) | %s | %s | %s |\n",
			i+1,
			match.Technique.ID,
			match.Technique.URL,
			escapeMarkdown(match.Technique.Name),
			match.Technique.TacticList(),
			formatSimilarity(match.Similarity))
	}
	b.WriteString("\n")
}

// writeMatchDetails writes a description section per match
func (f *markdownFormatter) writeMatchDetails(b *strings.Builder, result *matcher.Result) {
	for _, match := range result.Matches {
		if match.Technique.Description == "" {
			continue
		}

		fmt.Fprintf(b, "### %s: %s\n\n", match.Technique.ID, escapeMarkdown(match.Technique.Name))
		b.WriteString(truncateDescription(match.Technique.Description, 500) + "\n\n")
	}
}

// escapeMarkdown escapes characters that break Markdown tables
func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// truncateDescription shortens long technique descriptions at a word boundary
func truncateDescription(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	truncated := s[:limit]
	if idx := strings.LastIndex(truncated, " "); idx > 0 {
		truncated = truncated[:idx]
	}
	return truncated + "..."
}
