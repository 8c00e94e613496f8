package skillgap

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// structuralRunes never appear in a real skill label; their presence means a
// scanner captured document syntax.
const structuralRunes = `{}"`

// Merger turns candidates from any mix of strategies into a Report.
type Merger struct {
	bounds       Bounds
	denySubs     []string
	denyPatterns []*regexp.Regexp
	placeholders map[string]struct{}
}

// NewMerger builds a merger from opts. It returns an error only when a deny pattern
// does not compile.
func NewMerger(opts Options) (*Merger, error) {
	patterns, err := compilePatterns(opts.DenyPatterns)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	denySubs := make([]string, 0, len(opts.DenyListSubstrings))
	for _, s := range opts.DenyListSubstrings {
		if s = strings.TrimSpace(s); s != "" {
			denySubs = append(denySubs, fold.String(s))
		}
	}
	placeholders := make(map[string]struct{}, len(opts.PlaceholderLabels))
	for _, p := range opts.PlaceholderLabels {
		placeholders[fold.String(strings.TrimSpace(p))] = struct{}{}
	}

	return &Merger{
		bounds:       opts.LabelLengthBounds,
		denySubs:     denySubs,
		denyPatterns: patterns,
		placeholders: placeholders,
	}, nil
}

// entry tracks one unique label while merging.
type entry struct {
	skill Skill
	first int // index of the first candidate carrying this label
}

// Merge sanitizes, deduplicates and orders candidates. Labels are compared
// case-insensitively and the first casing seen is kept. When the same label arrives
// under several tiers the most urgent tier wins. The result is ordered by tier, then
// by first recovery. Merge never fails; no valid candidates yields an empty report.
func (m *Merger) Merge(candidates []Candidate) Report {
	// Casers carry state, so each call folds with its own.
	fold := cases.Fold()
	byKey := make(map[string]*entry)
	var order []*entry

	for i, c := range candidates {
		label, ok := m.sanitize(c.Label, fold)
		if !ok {
			continue
		}
		key := fold.String(label)

		if existing, seen := byKey[key]; seen {
			if c.Tier.Rank() < existing.skill.Tier.Rank() {
				existing.skill.Tier = c.Tier
				existing.skill.Provenance = c.Provenance
			}
			continue
		}

		e := &entry{
			skill: Skill{Label: label, Tier: c.Tier, Provenance: c.Provenance},
			first: i,
		}
		byKey[key] = e
		order = append(order, e)
	}

	sort.SliceStable(order, func(i, j int) bool {
		ri, rj := order[i].skill.Tier.Rank(), order[j].skill.Tier.Rank()
		if ri != rj {
			return ri < rj
		}
		return order[i].first < order[j].first
	})

	skills := make([]Skill, len(order))
	for i, e := range order {
		skills[i] = e.skill
	}
	return Report{Skills: skills}
}

// sanitize normalizes a label and reports whether it survives the noise filters.
func (m *Merger) sanitize(label string, fold cases.Caser) (string, bool) {
	label = strings.Join(strings.Fields(norm.NFC.String(label)), " ")

	if !m.bounds.Contains(utf8.RuneCountInString(label)) {
		return "", false
	}
	if strings.ContainsAny(label, structuralRunes) {
		return "", false
	}

	folded := fold.String(label)
	if _, ok := m.placeholders[folded]; ok {
		return "", false
	}
	for _, sub := range m.denySubs {
		if strings.Contains(folded, sub) {
			return "", false
		}
	}
	for _, re := range m.denyPatterns {
		if re.MatchString(label) {
			return "", false
		}
	}

	return label, true
}
