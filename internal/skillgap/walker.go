package skillgap

import (
	"log/slog"
	"sort"
	"strings"
)

// maxWalkDepth bounds how deep the walker searches for a recognized container.
const maxWalkDepth = 6

// shapeKind tags the document layouts the walker knows how to read.
type shapeKind int

const (
	shapeUnrecognized shapeKind = iota
	shapeCanonical              // {"missing_skills": {"critical": [...], ...}}
	shapeAlternate              // {"recommended_projects": [{"skill_focus": ..., "project": ...}]}
	shapeEnvelope               // {"error": ..., "raw_response": "<original text>"}
)

func (k shapeKind) String() string {
	switch k {
	case shapeCanonical:
		return "canonical"
	case shapeAlternate:
		return "alternate"
	case shapeEnvelope:
		return "envelope"
	default:
		return "unrecognized"
	}
}

// shape is one occurrence of a known layout inside a document.
type shape struct {
	kind shapeKind
	node any
}

// WalkResult is everything the walker recovered from a decoded document.
// Envelopes holds inner model text found in error envelopes; the engine
// runs a nested extraction on each.
type WalkResult struct {
	Extraction
	Envelopes []string
}

// Walker extracts skill-gap data from decoded documents across the known schema shapes.
type Walker struct {
	tierKeys     map[string]Tier
	sectionKeys  keySet
	projectKeys  keySet
	focusKeys    keySet
	describeKeys keySet
	envelopeKeys keySet
	logger       *slog.Logger
}

// NewWalker builds a walker from the alias tables in opts.
func NewWalker(opts Options, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	tierKeys := make(map[string]Tier)
	for _, tier := range Tiers {
		for _, alias := range opts.TierFieldAliases[tier] {
			tierKeys[fieldKey(alias)] = tier
		}
	}
	return &Walker{
		tierKeys:     tierKeys,
		sectionKeys:  newKeySet(opts.SectionAliases),
		projectKeys:  newKeySet(opts.ProjectListAliases),
		focusKeys:    newKeySet(opts.SkillFocusAliases),
		describeKeys: newKeySet(opts.ProjectAliases),
		envelopeKeys: newKeySet(opts.EnvelopeAliases),
		logger:       logger.With("component", "skillgap.walker"),
	}
}

// Walk classifies the document into known shapes and reads each one.
// Shapes are not exclusive: a document carrying both the canonical container and a
// project list yields the union of both.
func (w *Walker) Walk(doc *Document) WalkResult {
	var result WalkResult
	if doc == nil {
		return result
	}

	for _, s := range w.classify(doc) {
		switch s.kind {
		case shapeCanonical:
			result.Add(w.walkCanonical(s.node))
		case shapeAlternate:
			result.Add(w.walkAlternate(s.node))
		case shapeEnvelope:
			if inner, ok := s.node.(string); ok && strings.TrimSpace(inner) != "" {
				result.Envelopes = append(result.Envelopes, inner)
			}
		default:
			w.logger.Debug("document has no recognized skill-gap shape")
		}
	}

	return result
}

// classify returns every known shape in the document, canonical shapes first.
func (w *Walker) classify(doc *Document) []shape {
	var shapes []shape

	for _, node := range findFields(doc.Root, w.sectionKeys, maxWalkDepth) {
		shapes = append(shapes, shape{kind: shapeCanonical, node: node})
	}
	// Tier fields at the root without a wrapping container.
	if root, ok := doc.Object(); ok && w.hasTierField(root) {
		shapes = append(shapes, shape{kind: shapeCanonical, node: root})
	}

	for _, node := range findFields(doc.Root, w.projectKeys, maxWalkDepth) {
		shapes = append(shapes, shape{kind: shapeAlternate, node: node})
	}

	if root, ok := doc.Object(); ok {
		for _, key := range sortedKeys(root) {
			if w.envelopeKeys.has(key) {
				shapes = append(shapes, shape{kind: shapeEnvelope, node: root[key]})
			}
		}
	}

	if len(shapes) == 0 {
		shapes = append(shapes, shape{kind: shapeUnrecognized, node: doc.Root})
	}
	return shapes
}

func (w *Walker) hasTierField(m map[string]any) bool {
	for key := range m {
		if _, ok := w.tierKeys[fieldKey(key)]; ok {
			return true
		}
	}
	return false
}

// walkCanonical reads a canonical container. The container is usually a mapping of
// tier name to list, but a list of {skill, priority} objects is accepted too.
// An empty container yields nothing and leaves the alternate shape to supply results.
func (w *Walker) walkCanonical(node any) Extraction {
	var out Extraction

	switch v := node.(type) {
	case map[string]any:
		byTier := make(map[Tier][]any)
		for key, value := range v {
			tier, ok := w.tierKeys[fieldKey(key)]
			if !ok {
				continue
			}
			byTier[tier] = append(byTier[tier], value)
		}
		if len(byTier) == 0 {
			w.logger.Debug("canonical container has no tier fields")
		}
		for _, tier := range Tiers {
			for _, value := range byTier[tier] {
				for _, label := range w.labels(value, string(tier)) {
					out.Candidates = append(out.Candidates, Candidate{Label: label, Tier: tier, Provenance: ProvenanceSchemaWalk})
				}
			}
		}
	case []any:
		for _, item := range v {
			out.Candidates = append(out.Candidates, w.classifiedItem(item)...)
		}
	default:
		w.logger.Debug("canonical container is not a mapping or list")
	}

	return out
}

// classifiedItem reads one element of a list-shaped container.
func (w *Walker) classifiedItem(item any) []Candidate {
	switch v := item.(type) {
	case string:
		return []Candidate{{Label: v, Provenance: ProvenanceSchemaWalk}}
	case map[string]any:
		label, ok := skillName(v)
		if !ok {
			return nil
		}
		tier := Untiered
		for _, key := range []string{"tier", "priority", "level", "urgency"} {
			if raw, ok := lookup(v, key).(string); ok {
				if t, known := w.tierKeys[fieldKey(raw)]; known {
					tier = t
					break
				}
			}
		}
		return []Candidate{{Label: label, Tier: tier, Provenance: ProvenanceSchemaWalk}}
	default:
		return nil
	}
}

// walkAlternate reads a project list: skill_focus values become untiered candidates
// and project descriptions are passed on for keyword harvesting.
func (w *Walker) walkAlternate(node any) Extraction {
	var out Extraction

	items, ok := node.([]any)
	if !ok {
		if obj, isObj := node.(map[string]any); isObj {
			items = []any{obj}
		}
	}

	for _, item := range items {
		switch v := item.(type) {
		case string:
			out.Descriptions = append(out.Descriptions, v)
		case map[string]any:
			for _, key := range sortedKeys(v) {
				switch {
				case w.focusKeys.has(key):
					// A string focus is one skill even when it contains commas.
					if focus, isText := v[key].(string); isText {
						if focus = strings.TrimSpace(focus); focus != "" {
							out.Candidates = append(out.Candidates, Candidate{Label: focus, Provenance: ProvenanceSchemaWalk})
						}
						continue
					}
					for _, label := range w.labels(v[key], key) {
						out.Candidates = append(out.Candidates, Candidate{Label: label, Provenance: ProvenanceSchemaWalk})
					}
				case w.describeKeys.has(key):
					if text, isText := v[key].(string); isText {
						out.Descriptions = append(out.Descriptions, text)
					}
				}
			}
		}
	}

	return out
}

// labels turns a field value into skill strings: a list of strings, a list of
// {name|skill} objects, or a single comma-separated string.
func (w *Walker) labels(value any, field string) []string {
	switch v := value.(type) {
	case string:
		return splitList(v)
	case []any:
		var labels []string
		for _, item := range v {
			switch it := item.(type) {
			case string:
				labels = append(labels, it)
			case map[string]any:
				if name, ok := skillName(it); ok {
					labels = append(labels, name)
				}
			}
		}
		return labels
	case nil:
		return nil
	default:
		w.logger.Debug("skipping field with unexpected value type", "field", field)
		return nil
	}
}

// skillNameKeys are the object fields that carry a skill's name.
var skillNameKeys = []string{"skill", "name", "label", "title"}

func skillName(m map[string]any) (string, bool) {
	for _, key := range skillNameKeys {
		if s, ok := lookup(m, key).(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

// lookup finds key in m using field-name folding.
func lookup(m map[string]any, key string) any {
	want := fieldKey(key)
	for k, v := range m {
		if fieldKey(k) == want {
			return v
		}
	}
	return nil
}

// findFields returns the values of every field whose name is in keys, searching
// nested objects and arrays breadth-first in sorted key order.
func findFields(root any, keys keySet, depth int) []any {
	var found []any
	level := []any{root}
	for d := 0; d < depth && len(level) > 0; d++ {
		var next []any
		for _, node := range level {
			switch v := node.(type) {
			case map[string]any:
				for _, key := range sortedKeys(v) {
					if keys.has(key) {
						found = append(found, v[key])
						continue
					}
					next = append(next, v[key])
				}
			case []any:
				next = append(next, v...)
			}
		}
		level = next
	}
	return found
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// splitList splits a comma-separated string into trimmed, non-empty parts.
func splitList(s string) []string {
	var parts []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// keySet holds field names folded with fieldKey.
type keySet map[string]struct{}

func newKeySet(names []string) keySet {
	set := make(keySet, len(names))
	for _, n := range names {
		set[fieldKey(n)] = struct{}{}
	}
	return set
}

func (k keySet) has(name string) bool {
	_, ok := k[fieldKey(name)]
	return ok
}

// fieldKey folds a field name so that missing_skills, missingSkills, Missing-Skills
// and missing\_skills compare equal.
func fieldKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch r {
		case '\\', '_', '-', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
