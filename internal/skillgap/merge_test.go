package skillgap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMerger(t *testing.T) *Merger {
	t.Helper()
	m, err := NewMerger(DefaultOptions())
	require.NoError(t, err)
	return m
}

func TestMerger_DeduplicatesCaseInsensitively(t *testing.T) {
	report := newTestMerger(t).Merge([]Candidate{
		{Label: "Deep Learning", Tier: TierCritical, Provenance: ProvenanceSchemaWalk},
		{Label: "deep learning", Tier: TierCritical, Provenance: ProvenanceFallbackPattern},
		{Label: "DEEP  LEARNING", Tier: TierCritical, Provenance: ProvenanceKeywordHarvest},
	})

	assert.Equal(t, []Skill{
		{Label: "Deep Learning", Tier: TierCritical, Provenance: ProvenanceSchemaWalk},
	}, report.Skills)
}

func TestMerger_TierConflictKeepsMostUrgent(t *testing.T) {
	report := newTestMerger(t).Merge([]Candidate{
		{Label: "Docker", Tier: TierImportant, Provenance: ProvenanceSchemaWalk},
		{Label: "Kafka", Tier: TierNiceToHave, Provenance: ProvenanceSchemaWalk},
		{Label: "docker", Tier: TierCritical, Provenance: ProvenanceFallbackPattern},
		{Label: "Kafka", Provenance: ProvenanceKeywordHarvest},
	})

	assert.Equal(t, []Skill{
		{Label: "Docker", Tier: TierCritical, Provenance: ProvenanceFallbackPattern},
		{Label: "Kafka", Tier: TierNiceToHave, Provenance: ProvenanceSchemaWalk},
	}, report.Skills)
}

func TestMerger_OrdersByTierThenRecovery(t *testing.T) {
	report := newTestMerger(t).Merge([]Candidate{
		{Label: "Untiered One"},
		{Label: "Nice One", Tier: TierNiceToHave},
		{Label: "Important One", Tier: TierImportant},
		{Label: "Critical One", Tier: TierCritical},
		{Label: "Important Two", Tier: TierImportant},
		{Label: "Critical Two", Tier: TierCritical},
	})

	assert.Equal(t, []string{
		"Critical One", "Critical Two",
		"Important One", "Important Two",
		"Nice One",
		"Untiered One",
	}, report.Labels())
}

func TestMerger_Sanitize(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		expected string
		keep     bool
	}{
		{"Trims and collapses whitespace", "  Deep \t  Learning \n", "Deep Learning", true},
		{"Minimum length", "Go", "Go", true},
		{"Too short", "R", "", false},
		{"Maximum length", strings.Repeat("a", 49), strings.Repeat("a", 49), true},
		{"Too long", strings.Repeat("a", 50), "", false},
		{"Empty", "   ", "", false},
		{"Metadata key", "model_used", "", false},
		{"Metadata key any case", "Timestamp", "", false},
		{"Model identifier", "gpt-4o-mini", "", false},
		{"Version fragment", "v0.2", "", false},
		{"Version inside label", "release v1.2.3", "", false},
		{"ISO date", "2024-06-07", "", false},
		{"ISO time fragment", "07T", "", false},
		{"ISO timestamp", "2024-06-07T12:30:00Z", "", false},
		{"Placeholder", "None", "", false},
		{"Placeholder n/a", "N/A", "", false},
		{"Structural residue", `Spark"}`, "", false},
		{"Key-value residue", `skill": "Helm`, "", false},
		{"Letter v in word kept", "DevOps", "DevOps", true},
		{"Version-like number kept without v", "Python 3", "Python 3", true},
	}

	m := newTestMerger(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := m.Merge([]Candidate{{Label: tt.label, Tier: TierCritical}})
			if !tt.keep {
				assert.Empty(t, report.Skills)
				return
			}
			require.Len(t, report.Skills, 1)
			assert.Equal(t, tt.expected, report.Skills[0].Label)
		})
	}
}

func TestMerger_EmptyInput(t *testing.T) {
	report := newTestMerger(t).Merge(nil)
	assert.NotNil(t, report.Skills, "empty report should serialize as []")
	assert.True(t, report.Empty())
}

func TestMerger_CustomBoundsAndDenyList(t *testing.T) {
	opts := DefaultOptions()
	opts.LabelLengthBounds = Bounds{Min: 3, Max: 10}
	opts.DenyListSubstrings = append(opts.DenyListSubstrings, "internal")

	m, err := NewMerger(opts)
	require.NoError(t, err)

	report := m.Merge([]Candidate{
		{Label: "Go"},
		{Label: "Kubernetes"},
		{Label: "Observability"},
		{Label: "Internals"},
	})
	assert.Equal(t, []string{"Kubernetes"}, report.Labels())
}

func TestNewMerger_InvalidPattern(t *testing.T) {
	opts := DefaultOptions()
	opts.DenyPatterns = []string{"("}

	_, err := NewMerger(opts)
	assert.Error(t, err)
}
