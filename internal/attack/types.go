package attack

import "strings"

// Placeholder values used when the upstream feed omits a field
const (
	PlaceholderID          = "No ID"
	PlaceholderName        = "No Name"
	PlaceholderDescription = "No Description"
)

// Technique represents a single MITRE ATT&CK technique record
type Technique struct {
	// ID is the ATT&CK technique identifier (e.g. "T1566.001")
	ID string `json:"id"`

	// Name is the human-readable technique name
	Name string `json:"name"`

	// Description is the full technique description used for embedding
	Description string `json:"description"`

	// Tactics lists the kill-chain phases the technique belongs to
	Tactics []string `json:"tactics"`

	// URL points to the technique page on attack.mitre.org
	URL string `json:"url,omitempty"`

	// SubTechnique indicates whether this is a sub-technique (e.g. T1566.001)
	SubTechnique bool `json:"sub_technique,omitempty"`
}

// TacticList returns the tactics joined for display. An empty tactic
// list yields the empty string.
func (t *Technique) TacticList() string {
	return strings.Join(t.Tactics, ", ")
}

// applyPlaceholders fills missing fields with the literal placeholder
// strings so downstream formatting never sees empty identifiers.
func (t *Technique) applyPlaceholders() {
	if t.ID == "" {
		t.ID = PlaceholderID
	}
	if t.Name == "" {
		t.Name = PlaceholderName
	}
	if t.Description == "" {
		t.Description = PlaceholderDescription
	}
	if t.Tactics == nil {
		t.Tactics = []string{}
	}
}
