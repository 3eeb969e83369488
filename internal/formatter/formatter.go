package formatter

import (
	"fmt"

	"github.com/yildizm/attackmap/internal/matcher"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(result *matcher.Result) ([]byte, error)
}

// New creates a formatter for the given output format
func New(format string, color bool) (Formatter, error) {
	switch format {
	case "", "text":
		return NewTerminal(color), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	case "csv":
		return NewCSV(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
