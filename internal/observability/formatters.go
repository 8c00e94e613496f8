// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/skillgap/internal/analysis"
	"github.com/jonathan/skillgap/internal/skillgap"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display per tier
	maxItemsToShow = 8
)

// tierSections lists the report sections in display order.
var tierSections = []struct {
	tier  skillgap.Tier
	title string
}{
	{skillgap.TierCritical, "Critical"},
	{skillgap.TierImportant, "Important"},
	{skillgap.TierNiceToHave, "Nice-to-have"},
	{skillgap.Untiered, "Untiered"},
}

// provenanceMarks abbreviates provenance for compact listing.
var provenanceMarks = map[skillgap.Provenance]string{
	skillgap.ProvenanceSchemaWalk:      "",
	skillgap.ProvenanceFallbackPattern: " [recovered]",
	skillgap.ProvenanceKeywordHarvest:  " [keyword]",
}

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintReport outputs the skills of a report grouped by tier. An empty report
// prints a single "no skill gaps" line.
func (p *Printer) PrintReport(title string, report skillgap.Report) {
	if title == "" {
		title = "SKILL GAPS"
	}

	if report.Empty() {
		p.printBox(title, "No skill gaps detected.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Skills:   %d\n", len(report.Skills))
	if report.Strategy != "" {
		fmt.Fprintf(&sb, "Strategy: %s\n", report.Strategy)
	}

	for _, section := range tierSections {
		var skills []skillgap.Skill
		for _, s := range report.Skills {
			if s.Tier == section.tier {
				skills = append(skills, s)
			}
		}
		if len(skills) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "\n%s:\n", section.title)
		count := min(len(skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			fmt.Fprintf(&sb, "  • %s%s\n", skills[i].Label, provenanceMarks[skills[i].Provenance])
		}
		if len(skills) > maxItemsToShow {
			fmt.Fprintf(&sb, "  ... and %d more\n", len(skills)-maxItemsToShow)
		}
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnalysis outputs the model details of an analysis followed by its report.
func (p *Printer) PrintAnalysis(result *analysis.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Model:    %s\n", result.Model)
	fmt.Fprintf(&sb, "Attempts: %d", result.Attempts)
	if _, wrapped := analysis.UnwrapEnvelope(result.Raw); wrapped {
		sb.WriteString("\nResponse was not valid JSON; stored as an envelope")
	}
	p.printBox("ANALYSIS", sb.String())

	p.PrintReport("SKILL GAPS", result.Report)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
