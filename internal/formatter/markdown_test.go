package formatter

import (
	"strings"
	"testing"
)

func TestMarkdownMatchDetails(t *testing.T) {
	result := sampleResult()
	result.Matches[0].Technique.Description = "Adversaries may send phishing messages to gain access to victim systems."

	out, err := NewMarkdown().Format(result)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	output := string(out)

	if !strings.Contains(output, "### T1566: Phishing\n") {
		t.Errorf("Expected detail heading for T1566, output:\n%s", output)
	}

	// Headings stick to plain ASCII separators.
	if strings.Contains(output, "\u2014") {
		t.Error("Expected no em-dash in Markdown output")
	}

	// Matches without a description get no detail section.
	if strings.Contains(output, "### T1204") {
		t.Error("Expected no detail heading for a match without a description")
	}
}

func TestMarkdownTableEscapesPipes(t *testing.T) {
	result := sampleResult()
	result.Matches[0].Technique.Name = "Phishing|Spearphishing"

	out, err := NewMarkdown().Format(result)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	if !strings.Contains(string(out), `Phishing\|Spearphishing`) {
		t.Error("Expected pipe in technique name to be escaped")
	}
}
