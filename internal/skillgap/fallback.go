package skillgap

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

// fieldRole says what the fallback extractor does with a matched field.
type fieldRole int

const (
	roleTier fieldRole = iota
	roleFocus
	roleProject
)

// fieldPattern locates `"<name>":` in text, tolerating escaped quotes and
// backslash-escaped underscores in the name.
type fieldPattern struct {
	name string
	role fieldRole
	tier Tier
	re   *regexp.Regexp
}

// fieldMatch is one occurrence of a field name in the scanned text.
type fieldMatch struct {
	pattern *fieldPattern
	start   int
	end     int // offset just past the colon
}

// pieceCutset is stripped from both ends of every list element.
const pieceCutset = " \t\r\n\"'[]{}\\"

var quotedValue = regexp.MustCompile(`^\s*\\*"([^"]*)"`)

// FallbackExtractor scans text that failed strict decoding for known field names and
// recovers their values without needing a complete document. A tier list missing its
// closing bracket is read to end of input, so truncated output still yields skills.
type FallbackExtractor struct {
	patterns []*fieldPattern
	logger   *slog.Logger
}

// NewFallbackExtractor compiles one pattern per tier, skill-focus and project alias.
func NewFallbackExtractor(opts Options, logger *slog.Logger) *FallbackExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	fe := &FallbackExtractor{logger: logger.With("component", "skillgap.fallback")}

	for _, tier := range Tiers {
		for _, alias := range opts.TierFieldAliases[tier] {
			fe.patterns = append(fe.patterns, newFieldPattern(alias, roleTier, tier))
		}
	}
	for _, alias := range opts.SkillFocusAliases {
		fe.patterns = append(fe.patterns, newFieldPattern(alias, roleFocus, Untiered))
	}
	for _, alias := range opts.ProjectAliases {
		fe.patterns = append(fe.patterns, newFieldPattern(alias, roleProject, Untiered))
	}

	return fe
}

func newFieldPattern(name string, role fieldRole, tier Tier) *fieldPattern {
	var b strings.Builder
	b.WriteString(`(?i)\\*"`)
	for _, r := range name {
		if r == '_' {
			b.WriteString(`\\*_`)
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	b.WriteString(`\\*"\s*:`)

	return &fieldPattern{
		name: name,
		role: role,
		tier: tier,
		re:   regexp.MustCompile(b.String()),
	}
}

// Extract scans text for every occurrence of every known field. It never fails; text
// with no recoverable field yields an empty Extraction.
func (fe *FallbackExtractor) Extract(text string) Extraction {
	var out Extraction

	for _, m := range fe.matches(text) {
		switch m.pattern.role {
		case roleTier:
			labels, err := captureList(text, m)
			if err != nil {
				fe.logger.Debug("skipping field", "error", err)
				continue
			}
			for _, label := range labels {
				out.Candidates = append(out.Candidates, Candidate{Label: label, Tier: m.pattern.tier, Provenance: ProvenanceFallbackPattern})
			}
		case roleFocus:
			labels, err := captureFocus(text, m)
			if err != nil {
				fe.logger.Debug("skipping field", "error", err)
				continue
			}
			for _, label := range labels {
				out.Candidates = append(out.Candidates, Candidate{Label: label, Provenance: ProvenanceFallbackPattern})
			}
		case roleProject:
			value, err := captureQuoted(text, m)
			if err != nil {
				fe.logger.Debug("skipping field", "error", err)
				continue
			}
			out.Descriptions = append(out.Descriptions, value)
		}
	}

	return out
}

// matches returns every field occurrence in text order. Aliases that fold to the
// same spelling match at the same offset; only the first is kept.
func (fe *FallbackExtractor) matches(text string) []fieldMatch {
	var all []fieldMatch
	for _, p := range fe.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			all = append(all, fieldMatch{pattern: p, start: loc[0], end: loc[1]})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].start < all[j].start
	})

	deduped := all[:0]
	last := -1
	for _, m := range all {
		if m.start == last {
			continue
		}
		deduped = append(deduped, m)
		last = m.start
	}
	return deduped
}

// captureList reads the value following a field: a bracketed list, read to end of
// input when the closing bracket is missing, or a single quoted string.
func captureList(text string, m fieldMatch) ([]string, error) {
	rest := strings.TrimLeft(text[m.end:], " \t\r\n")

	var span string
	switch {
	case strings.HasPrefix(rest, "["):
		rest = rest[1:]
		if end := strings.IndexByte(rest, ']'); end >= 0 {
			span = rest[:end]
		} else {
			span = rest
		}
	case strings.HasPrefix(rest, `"`) || strings.HasPrefix(rest, `\"`):
		value, err := captureQuoted(text, m)
		if err != nil {
			return nil, err
		}
		span = value
	default:
		return nil, &MalformedField{Field: m.pattern.name, Offset: m.start, Message: "value is neither a list nor a string"}
	}

	var labels []string
	for _, piece := range strings.Split(span, ",") {
		if strings.Contains(piece, `":`) {
			// Element of an object list: keep only the skill name.
			var ok bool
			if piece, ok = objectPieceName(piece); !ok {
				continue
			}
		}
		if piece = strings.Trim(piece, pieceCutset); piece != "" {
			labels = append(labels, piece)
		}
	}
	if len(labels) == 0 {
		return nil, &MalformedField{Field: m.pattern.name, Offset: m.start, Message: "no content"}
	}
	return labels, nil
}

// captureFocus reads a skill-focus value. A quoted string is one skill, commas
// included; only a bracketed list yields several.
func captureFocus(text string, m fieldMatch) ([]string, error) {
	rest := strings.TrimLeft(text[m.end:], " \t\r\n")
	if strings.HasPrefix(rest, "[") {
		return captureList(text, m)
	}
	value, err := captureQuoted(text, m)
	if err != nil {
		return nil, err
	}
	return []string{value}, nil
}

// objectPieceName reads a `"key": "value"` fragment of an object list element and
// returns the value when key names the skill.
func objectPieceName(piece string) (string, bool) {
	key, value, found := strings.Cut(piece, ":")
	if !found {
		return "", false
	}
	key = strings.Trim(key, pieceCutset)
	for _, name := range skillNameKeys {
		if fieldKey(key) == fieldKey(name) {
			value = strings.Trim(value, pieceCutset)
			return value, value != ""
		}
	}
	return "", false
}

// captureQuoted returns the text between the first pair of quotation marks after the colon.
func captureQuoted(text string, m fieldMatch) (string, error) {
	sub := quotedValue.FindStringSubmatch(text[m.end:])
	if sub == nil {
		return "", &MalformedField{Field: m.pattern.name, Offset: m.start, Message: "no quoted value"}
	}
	value := strings.TrimSpace(strings.TrimRight(sub[1], `\`))
	if value == "" {
		return "", &MalformedField{Field: m.pattern.name, Offset: m.start, Message: "empty value"}
	}
	return value, nil
}
