package formatter

import (
	"fmt"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/attackmap/internal/matcher"
)

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// formatSimilarity renders a similarity score with four decimal places
func formatSimilarity(score float32) string {
	return fmt.Sprintf("%.4f", score)
}

// matchBlock renders the canonical match block: ID, Name, Tactic and
// Similarity on separate lines.
func matchBlock(match matcher.Match) string {
	return fmt.Sprintf("ID: %s\nName: %s\nTactic: %s\nSimilarity: %s\n",
		match.Technique.ID,
		match.Technique.Name,
		match.Technique.TacticList(),
		formatSimilarity(match.Similarity))
}

// createSimilarityBar creates an ASCII similarity bar using go-termfmt
func createSimilarityBar(score float32, opts *termfmt.TerminalOptions) string {
	value := float64(score)
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	return termfmt.CreateConfidenceBar(value, opts)
}
