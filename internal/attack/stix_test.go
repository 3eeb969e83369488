package attack

import (
	"testing"
)

const sampleBundle = `{
  "type": "bundle",
  "id": "bundle--4b6dc57a-8dc6-4a49-88b8-6a5e6d5c2b61",
  "objects": [
    {
      "type": "attack-pattern",
      "id": "attack-pattern--0001",
      "name": "Phishing",
      "description": "Adversaries may send phishing messages to gain access to victim systems.",
      "external_references": [
        {"source_name": "mitre-attack", "external_id": "T1566", "url": "https://attack.mitre.org/techniques/T1566"},
        {"source_name": "capec", "external_id": "CAPEC-98"}
      ],
      "kill_chain_phases": [
        {"kill_chain_name": "mitre-attack", "phase_name": "initial-access"}
      ]
    },
    {
      "type": "attack-pattern",
      "id": "attack-pattern--0002",
      "name": "Spearphishing Attachment",
      "description": "Adversaries may send spearphishing emails with a malicious attachment.",
      "x_mitre_is_subtechnique": true,
      "external_references": [
        {"source_name": "mitre-attack", "external_id": "T1566.001", "url": "https://attack.mitre.org/techniques/T1566/001"}
      ],
      "kill_chain_phases": [
        {"kill_chain_name": "mitre-attack", "phase_name": "initial-access"},
        {"kill_chain_name": "lockheed", "phase_name": "delivery"}
      ]
    },
    {
      "type": "attack-pattern",
      "id": "attack-pattern--0003",
      "name": "Old Technique",
      "description": "Retired.",
      "revoked": true,
      "external_references": [
        {"source_name": "mitre-attack", "external_id": "T9999"}
      ]
    },
    {
      "type": "attack-pattern",
      "id": "attack-pattern--0004",
      "name": "Deprecated Technique",
      "description": "Also retired.",
      "x_mitre_deprecated": true
    },
    {
      "type": "relationship",
      "id": "relationship--0005"
    },
    {
      "type": "attack-pattern",
      "id": "attack-pattern--0006"
    }
  ]
}`

func TestParseBundle(t *testing.T) {
	techniques, err := ParseBundle([]byte(sampleBundle))
	if err != nil {
		t.Fatalf("ParseBundle() error = %v", err)
	}

	// revoked, deprecated, and non-attack-pattern objects are skipped
	if len(techniques) != 3 {
		t.Fatalf("ParseBundle() returned %d techniques, want 3", len(techniques))
	}

	first := techniques[0]
	if first.ID != "T1566" {
		t.Errorf("first.ID = %q, want %q", first.ID, "T1566")
	}
	if first.Name != "Phishing" {
		t.Errorf("first.Name = %q, want %q", first.Name, "Phishing")
	}
	if first.URL != "https://attack.mitre.org/techniques/T1566" {
		t.Errorf("first.URL = %q", first.URL)
	}
	if first.TacticList() != "initial-access" {
		t.Errorf("first.TacticList() = %q, want %q", first.TacticList(), "initial-access")
	}

	sub := techniques[1]
	if !sub.SubTechnique {
		t.Error("expected T1566.001 to be marked as sub-technique")
	}
	if sub.TacticList() != "initial-access" {
		t.Errorf("non-mitre kill chain phases must be ignored, got %q", sub.TacticList())
	}
}

func TestParseBundlePlaceholders(t *testing.T) {
	techniques, err := ParseBundle([]byte(sampleBundle))
	if err != nil {
		t.Fatalf("ParseBundle() error = %v", err)
	}

	empty := techniques[2]
	if empty.ID != PlaceholderID {
		t.Errorf("missing id = %q, want %q", empty.ID, PlaceholderID)
	}
	if empty.Name != PlaceholderName {
		t.Errorf("missing name = %q, want %q", empty.Name, PlaceholderName)
	}
	if empty.Description != PlaceholderDescription {
		t.Errorf("missing description = %q, want %q", empty.Description, PlaceholderDescription)
	}
	if empty.TacticList() != "" {
		t.Errorf("missing tactics must join to empty string, got %q", empty.TacticList())
	}
}

func TestParseBundleErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "invalid json", data: "{not json"},
		{name: "wrong type", data: `{"type": "report", "objects": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseBundle([]byte(tt.data)); err == nil {
				t.Error("ParseBundle() expected error, got nil")
			}
		})
	}
}

func TestTacticList(t *testing.T) {
	tests := []struct {
		name    string
		tactics []string
		want    string
	}{
		{name: "multiple", tactics: []string{"execution", "persistence"}, want: "execution, persistence"},
		{name: "single", tactics: []string{"impact"}, want: "impact"},
		{name: "empty", tactics: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			technique := Technique{Tactics: tt.tactics}
			if got := technique.TacticList(); got != tt.want {
				t.Errorf("TacticList() = %q, want %q", got, tt.want)
			}
		})
	}
}
