package formatter

import (
	"encoding/json"
	"time"

	"github.com/yildizm/attackmap/internal/matcher"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

func (f *jsonFormatter) Format(result *matcher.Result) ([]byte, error) {
	output := &JSONOutput{
		Query:       result.Query,
		Matches:     createMatchOutputs(result.Matches),
		Explanation: result.Explanation,
		Summary: &SummaryOutput{
			CorpusSize:  result.CorpusSize,
			MatchCount:  len(result.Matches),
			Elapsed:     result.Elapsed.String(),
			GeneratedAt: time.Now().UTC(),
		},
	}

	return json.MarshalIndent(output, "", "  ")
}

// JSONOutput is the top-level JSON structure
type JSONOutput struct {
	Query       string         `json:"query"`
	Matches     []*MatchOutput `json:"matches"`
	Explanation string         `json:"explanation,omitempty"`
	Summary     *SummaryOutput `json:"summary"`
}

// MatchOutput represents one ranked technique
type MatchOutput struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Tactics      []string `json:"tactics"`
	URL          string   `json:"url,omitempty"`
	SubTechnique bool     `json:"sub_technique"`
	Similarity   string   `json:"similarity"`
}

// SummaryOutput represents the summary section
type SummaryOutput struct {
	CorpusSize  int       `json:"corpus_size"`
	MatchCount  int       `json:"match_count"`
	Elapsed     string    `json:"elapsed"`
	GeneratedAt time.Time `json:"generated_at"`
}

// createMatchOutputs converts matches into their JSON representation
func createMatchOutputs(matches []matcher.Match) []*MatchOutput {
	outputs := make([]*MatchOutput, 0, len(matches))

	for _, match := range matches {
		outputs = append(outputs, &MatchOutput{
			ID:           match.Technique.ID,
			Name:         match.Technique.Name,
			Tactics:      match.Technique.Tactics,
			URL:          match.Technique.URL,
			SubTechnique: match.Technique.SubTechnique,
			Similarity:   formatSimilarity(match.Similarity),
		})
	}

	return outputs
}
