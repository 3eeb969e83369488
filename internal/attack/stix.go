package attack

import (
	"encoding/json"
	"fmt"
)

// STIX 2.1 bundle structures, limited to the fields attackmap needs.
// The enterprise bundle mixes attack-patterns with relationships,
// intrusion sets, and more; everything that is not an attack-pattern
// is skipped during decoding.

type stixBundle struct {
	Type    string       `json:"type"`
	ID      string       `json:"id"`
	Objects []stixObject `json:"objects"`
}

type stixObject struct {
	Type               string              `json:"type"`
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	Revoked            bool                `json:"revoked"`
	Deprecated         bool                `json:"x_mitre_deprecated"`
	IsSubTechnique     bool                `json:"x_mitre_is_subtechnique"`
	ExternalReferences []externalReference `json:"external_references"`
	KillChainPhases    []killChainPhase    `json:"kill_chain_phases"`
}

type externalReference struct {
	SourceName string `json:"source_name"`
	ExternalID string `json:"external_id"`
	URL        string `json:"url"`
}

type killChainPhase struct {
	KillChainName string `json:"kill_chain_name"`
	PhaseName     string `json:"phase_name"`
}

const mitreSourceName = "mitre-attack"

// ParseBundle decodes a STIX 2.1 bundle and extracts active techniques.
// Revoked and deprecated attack-patterns are dropped.
func ParseBundle(data []byte) ([]Technique, error) {
	var bundle stixBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to decode STIX bundle: %w", err)
	}

	if bundle.Type != "bundle" {
		return nil, fmt.Errorf("unexpected STIX object type %q, want \"bundle\"", bundle.Type)
	}

	techniques := make([]Technique, 0, len(bundle.Objects))
	for i := range bundle.Objects {
		obj := &bundle.Objects[i]
		if obj.Type != "attack-pattern" || obj.Revoked || obj.Deprecated {
			continue
		}
		techniques = append(techniques, techniqueFromObject(obj))
	}

	return techniques, nil
}

// techniqueFromObject maps a STIX attack-pattern onto a Technique.
func techniqueFromObject(obj *stixObject) Technique {
	t := Technique{
		Name:         obj.Name,
		Description:  obj.Description,
		SubTechnique: obj.IsSubTechnique,
	}

	for _, ref := range obj.ExternalReferences {
		if ref.SourceName == mitreSourceName {
			t.ID = ref.ExternalID
			t.URL = ref.URL
			break
		}
	}

	for _, phase := range obj.KillChainPhases {
		if phase.KillChainName == mitreSourceName {
			t.Tactics = append(t.Tactics, phase.PhaseName)
		}
	}

	t.applyPlaceholders()
	return t
}
