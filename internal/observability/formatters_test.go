package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/skillgap/internal/analysis"
	"github.com/jonathan/skillgap/internal/skillgap"
)

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	report := skillgap.Report{
		Skills: []skillgap.Skill{
			{Label: "Deep Learning", Tier: skillgap.TierCritical, Provenance: skillgap.ProvenanceSchemaWalk},
			{Label: "Data Visualization", Tier: skillgap.TierImportant, Provenance: skillgap.ProvenanceFallbackPattern},
			{Label: "Python", Provenance: skillgap.ProvenanceKeywordHarvest},
		},
		Strategy: "schema-walk",
	}

	p.PrintReport("", report)
	output := buf.String()

	assert.Contains(t, output, "SKILL GAPS")
	assert.Contains(t, output, "Skills:   3")
	assert.Contains(t, output, "Strategy: schema-walk")
	assert.Contains(t, output, "Critical:")
	assert.Contains(t, output, "• Deep Learning")
	assert.Contains(t, output, "• Data Visualization [recovered]")
	assert.Contains(t, output, "• Python [keyword]")
	assert.NotContains(t, output, "Nice-to-have:")

	assert.Less(t, strings.Index(output, "Critical:"), strings.Index(output, "Important:"))
	assert.Less(t, strings.Index(output, "Important:"), strings.Index(output, "Untiered:"))
}

func TestPrintReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport("input.txt", skillgap.Report{Skills: []skillgap.Skill{}})
	output := buf.String()

	assert.Contains(t, output, "input.txt")
	assert.Contains(t, output, "No skill gaps detected.")
}

func TestPrintReport_LimitsItems(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var skills []skillgap.Skill
	for i := 0; i < maxItemsToShow+3; i++ {
		skills = append(skills, skillgap.Skill{Label: fmt.Sprintf("Skill %d", i), Tier: skillgap.TierImportant})
	}

	p.PrintReport("", skillgap.Report{Skills: skills})

	assert.Contains(t, buf.String(), "... and 3 more")
	assert.NotContains(t, buf.String(), fmt.Sprintf("Skill %d", maxItemsToShow))
}

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnalysis(&analysis.Result{
		Report:   skillgap.Report{Skills: []skillgap.Skill{{Label: "Terraform", Tier: skillgap.TierCritical}}},
		Model:    "gemini-2.5-flash",
		Attempts: 2,
		Raw:      analysis.WrapEnvelope("no skills recovered", "prose"),
	})
	output := buf.String()

	assert.Contains(t, output, "ANALYSIS")
	assert.Contains(t, output, "gemini-2.5-flash")
	assert.Contains(t, output, "Attempts: 2")
	assert.Contains(t, output, "stored as an envelope")
	assert.Contains(t, output, "Terraform")
}

func TestPrintAnalysis_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintAnalysis(nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_LineWidth(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100)+"\nshort")

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), "line %q", line)
	}
}
