package skillgap

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// vocabularyTerm is one compiled vocabulary entry.
type vocabularyTerm struct {
	label string
	re    *regexp.Regexp
	// checkLeft/checkRight are false when the entry itself starts or ends with a
	// non-word character (".NET", "C++"), where the entry supplies its own boundary.
	checkLeft  bool
	checkRight bool
}

// Harvester finds vocabulary entries in free-form text.
//
// Matching is case-insensitive and whole-token: a match must not be glued to a letter,
// digit, '+' or '#' on either side, so "Java" does not fire inside "JavaScript" and "C"
// does not fire inside "C++". Entries that overlap ("Learning" and "Machine Learning")
// both match when both are listed.
type Harvester struct {
	terms []vocabularyTerm
}

// NewHarvester compiles the vocabulary. Blank entries are ignored.
func NewHarvester(vocabulary []string) *Harvester {
	h := &Harvester{}
	for _, entry := range vocabulary {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		first, _ := utf8.DecodeRuneInString(entry)
		last, _ := utf8.DecodeLastRuneInString(entry)
		h.terms = append(h.terms, vocabularyTerm{
			label:      entry,
			re:         regexp.MustCompile(`(?i)` + regexp.QuoteMeta(entry)),
			checkLeft:  isTokenRune(first),
			checkRight: isTokenRune(last),
		})
	}
	return h
}

// Harvest returns the vocabulary labels found in text, one per occurrence, in order of
// position. Results are not deduplicated.
func (h *Harvester) Harvest(text string) []Candidate {
	type hit struct {
		pos   int
		order int
		label string
	}

	var hits []hit
	for i, term := range h.terms {
		for _, loc := range term.re.FindAllStringIndex(text, -1) {
			if term.checkLeft && loc[0] > 0 {
				if r, _ := utf8.DecodeLastRuneInString(text[:loc[0]]); isTokenRune(r) {
					continue
				}
			}
			if term.checkRight && loc[1] < len(text) {
				if r, _ := utf8.DecodeRuneInString(text[loc[1]:]); isTokenRune(r) {
					continue
				}
			}
			hits = append(hits, hit{pos: loc[0], order: i, label: term.label})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].pos != hits[j].pos {
			return hits[i].pos < hits[j].pos
		}
		return hits[i].order < hits[j].order
	})

	candidates := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		candidates = append(candidates, Candidate{Label: h.label, Provenance: ProvenanceKeywordHarvest})
	}
	return candidates
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#'
}
