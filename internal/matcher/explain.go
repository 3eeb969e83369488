package matcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/yildizm/go-promptfmt"

	"github.com/yildizm/attackmap/internal/ai"
)

// ExplanationResponse is the structured rationale expected from the
// completion model.
type ExplanationResponse struct {
	Rationale string `json:"rationale"`
	Caveats   string `json:"caveats,omitempty"`
}

// Explainer generates a short natural-language rationale for why the
// top matches fit the query.
type Explainer struct {
	completer ai.Completer
	maxTokens int
}

// NewExplainer creates an Explainer backed by the given completer.
func NewExplainer(completer ai.Completer) *Explainer {
	return &Explainer{
		completer: completer,
		maxTokens: 400,
	}
}

// Explain asks the completion model why the ranked techniques match
// the query. Falls back to the raw completion text when the model does
// not return valid JSON.
func (e *Explainer) Explain(ctx context.Context, result *Result) (string, error) {
	if e.completer == nil {
		return "", fmt.Errorf("no completion provider configured")
	}
	if result == nil || len(result.Matches) == 0 {
		return "", fmt.Errorf("no matches to explain")
	}

	prompt := buildExplainPrompt(result)

	req := &ai.CompletionRequest{
		Prompt:       prompt.String(),
		SystemPrompt: prompt.SystemPrompt,
		MaxTokens:    e.maxTokens,
		Temperature:  0.2,
	}

	resp, err := e.completer.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("explanation request failed: %w", err)
	}

	response := promptfmt.NewResponse(resp.Content)
	var explanation ExplanationResponse
	parseResult := response.TryParseJSON(&explanation)
	if !parseResult.Success || explanation.Rationale == "" {
		return strings.TrimSpace(resp.Content), nil
	}

	text := explanation.Rationale
	if explanation.Caveats != "" {
		text += "\n\nCaveats: " + explanation.Caveats
	}

	return text, nil
}

func buildExplainPrompt(result *Result) *promptfmt.Prompt {
	pb := promptfmt.New().
		System("You are a threat intelligence analyst. Explain why the listed MITRE ATT&CK techniques match the described behavior. Respond in JSON format.").
		User("Behavior description:\n%s", result.Query)

	var matchesText strings.Builder
	for _, match := range result.Matches {
		fmt.Fprintf(&matchesText, "- %s %s (tactic: %s, similarity: %.4f)\n",
			match.Technique.ID, match.Technique.Name, match.Technique.TacticList(), match.Similarity)
	}
	pb.AddContext("ranked techniques", matchesText.String())

	return pb.ExpectJSON(&ExplanationResponse{}).Build()
}
