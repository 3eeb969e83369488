package formatter

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/yildizm/attackmap/internal/matcher"
)

// csvFormatter formats output as CSV
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(result *matcher.Result) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"rank", "id", "name", "tactic", "similarity", "sub_technique", "url"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for i, match := range result.Matches {
		record := []string{
			strconv.Itoa(i + 1),
			match.Technique.ID,
			match.Technique.Name,
			match.Technique.TacticList(),
			formatSimilarity(match.Similarity),
			strconv.FormatBool(match.Technique.SubTechnique),
			match.Technique.URL,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
