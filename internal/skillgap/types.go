// Package skillgap recovers a skill-gap report from generative-model output that may be
// malformed, truncated, or shaped differently from call to call.
package skillgap

import (
	"encoding/json"
	"fmt"
)

// Tier is the urgency classification of a skill gap. The zero value is Untiered.
type Tier string

const (
	// TierCritical marks skills the candidate must acquire first
	TierCritical Tier = "critical"
	// TierImportant marks skills that matter but are not blocking
	TierImportant Tier = "important"
	// TierNiceToHave marks optional skills
	TierNiceToHave Tier = "nice_to_have"
	// Untiered marks a candidate recovered without classification
	Untiered Tier = ""
)

// Tiers lists the classified tiers in descending urgency.
var Tiers = []Tier{TierCritical, TierImportant, TierNiceToHave}

// Rank returns the urgency of the tier; lower is more urgent. Untiered sorts last.
func (t Tier) Rank() int {
	switch t {
	case TierCritical:
		return 0
	case TierImportant:
		return 1
	case TierNiceToHave:
		return 2
	default:
		return 3
	}
}

// Valid reports whether t is one of the known tiers or Untiered.
func (t Tier) Valid() bool {
	return t == Untiered || t.Rank() < 3
}

// MarshalJSON encodes Untiered as null.
func (t Tier) MarshalJSON() ([]byte, error) {
	if t == Untiered {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

// UnmarshalJSON accepts null or one of the tier names.
func (t *Tier) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Untiered
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	tier := Tier(s)
	if !tier.Valid() {
		return fmt.Errorf("unknown tier %q", s)
	}
	*t = tier
	return nil
}

// Provenance names the pipeline stage that recovered a skill.
type Provenance string

const (
	// ProvenanceSchemaWalk is set for skills read from a decoded document
	ProvenanceSchemaWalk Provenance = "schema-walk"
	// ProvenanceFallbackPattern is set for skills scanned out of undecodable text
	ProvenanceFallbackPattern Provenance = "fallback-pattern"
	// ProvenanceKeywordHarvest is set for vocabulary matches in free-form text
	ProvenanceKeywordHarvest Provenance = "keyword-harvest"
)

// Candidate is a raw skill-like string recovered by one of the strategies,
// before sanitization.
type Candidate struct {
	Label      string
	Tier       Tier
	Provenance Provenance
}

// Skill is a sanitized entry of the final report.
type Skill struct {
	Label      string     `json:"label"`
	Tier       Tier       `json:"tier"`
	Provenance Provenance `json:"provenance"`
}

// Report is the ordered, deduplicated result of one extraction.
// An empty Skills slice is a valid result meaning no gaps were recovered.
type Report struct {
	Skills   []Skill `json:"skills"`
	Strategy string  `json:"strategy,omitempty"`
}

// Empty reports whether no skills were recovered.
func (r Report) Empty() bool {
	return len(r.Skills) == 0
}

// ByTier returns the labels recovered under the given tier, in report order.
func (r Report) ByTier(tier Tier) []string {
	var labels []string
	for _, s := range r.Skills {
		if s.Tier == tier {
			labels = append(labels, s.Label)
		}
	}
	return labels
}

// Labels returns every label in report order.
func (r Report) Labels() []string {
	labels := make([]string, len(r.Skills))
	for i, s := range r.Skills {
		labels[i] = s.Label
	}
	return labels
}

// Extraction is what a single strategy recovers: candidate skills plus free-form
// descriptions to hand to the keyword harvester.
type Extraction struct {
	Candidates   []Candidate
	Descriptions []string
}

// Add appends other's candidates and descriptions to e.
func (e *Extraction) Add(other Extraction) {
	e.Candidates = append(e.Candidates, other.Candidates...)
	e.Descriptions = append(e.Descriptions, other.Descriptions...)
}

// Empty reports whether nothing was recovered.
func (e Extraction) Empty() bool {
	return len(e.Candidates) == 0 && len(e.Descriptions) == 0
}
