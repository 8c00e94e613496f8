package skillgap

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultOptions(), nil)
	require.NoError(t, err)
	return e
}

// assertReportInvariants checks the properties every report must hold.
func assertReportInvariants(t *testing.T, report Report) {
	t.Helper()
	require.NotNil(t, report.Skills)

	seen := make(map[string]bool)
	lastRank := -1
	for _, s := range report.Skills {
		key := strings.ToLower(s.Label)
		assert.False(t, seen[key], "duplicate label %q", s.Label)
		seen[key] = true

		assert.GreaterOrEqual(t, s.Tier.Rank(), lastRank, "label %q is out of tier order", s.Label)
		lastRank = s.Tier.Rank()
	}
}

func TestEngine_EndToEndCanonical(t *testing.T) {
	input := `{"missing_skills":{"critical":["Deep Learning"],"important":["Data Visualization","Predictive Analytics"],"nice_to_have":["Natural Language Processing"]}}`

	report := newTestEngine(t).Extract(input)

	assert.Equal(t, []Skill{
		{Label: "Deep Learning", Tier: TierCritical, Provenance: ProvenanceSchemaWalk},
		{Label: "Data Visualization", Tier: TierImportant, Provenance: ProvenanceSchemaWalk},
		{Label: "Predictive Analytics", Tier: TierImportant, Provenance: ProvenanceSchemaWalk},
		{Label: "Natural Language Processing", Tier: TierNiceToHave, Provenance: ProvenanceSchemaWalk},
	}, report.Skills)
	assert.Equal(t, "schema-walk", report.Strategy)
}

func TestEngine_TruncationRecovery(t *testing.T) {
	report := newTestEngine(t).Extract(`"critical": ["Deep Learning"`)

	assert.Equal(t, []Skill{
		{Label: "Deep Learning", Tier: TierCritical, Provenance: ProvenanceFallbackPattern},
	}, report.Skills)
	assert.Equal(t, "fallback-pattern", report.Strategy)
}

func TestEngine_TruncatedDocument(t *testing.T) {
	input := `{"missing_skills": {"critical": ["Deep Learning"], "important": ["Data Visualization", "Predictive Analytics"], "nice_to_have": ["Natural Lang`

	report := newTestEngine(t).Extract(input)

	assert.Equal(t, []string{"Deep Learning"}, report.ByTier(TierCritical))
	assert.Equal(t, []string{"Data Visualization", "Predictive Analytics"}, report.ByTier(TierImportant))
	assert.Equal(t, []string{"Natural Lang"}, report.ByTier(TierNiceToHave))
	assertReportInvariants(t, report)
}

func TestEngine_EscapedUnderscoreRecovery(t *testing.T) {
	input := `{"missing\_skills": {"critical": ["Deep Learning"], "nice\_to\_have": ["Natural Language Processing", "Computer Vision"]}}`

	report := newTestEngine(t).Extract(input)

	assert.Equal(t, []Skill{
		{Label: "Deep Learning", Tier: TierCritical, Provenance: ProvenanceSchemaWalk},
		{Label: "Natural Language Processing", Tier: TierNiceToHave, Provenance: ProvenanceSchemaWalk},
		{Label: "Computer Vision", Tier: TierNiceToHave, Provenance: ProvenanceSchemaWalk},
	}, report.Skills)
}

func TestEngine_AlternateShapeFallback(t *testing.T) {
	input := `{
		"missing_skills": {},
		"recommended_projects": [
			{
				"skill_focus": "Data Science and Machine Learning",
				"project": "Develop a predictive model using Python and machine learning libraries"
			}
		]
	}`

	report := newTestEngine(t).Extract(input)

	assert.Equal(t, []Skill{
		{Label: "Data Science and Machine Learning", Tier: Untiered, Provenance: ProvenanceSchemaWalk},
		{Label: "Python", Tier: Untiered, Provenance: ProvenanceKeywordHarvest},
		{Label: "Machine Learning", Tier: Untiered, Provenance: ProvenanceKeywordHarvest},
	}, report.Skills)
	assert.Equal(t, "schema-walk", report.Strategy)
}

func TestEngine_SkillFocusWithComma(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		strategy string
	}{
		{"Decoded document", `{"recommended_projects": [{"skill_focus": "Cloud Computing (AWS, Azure)"}]}`, "schema-walk"},
		{"Truncated document", `{"recommended_projects": [{"skill_focus": "Cloud Computing (AWS, Azure)", "project": "Mig`, "fallback-pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := newTestEngine(t).Extract(tt.input)
			assert.Equal(t, []string{"Cloud Computing (AWS, Azure)"}, report.Labels())
			assert.Equal(t, tt.strategy, report.Strategy)
		})
	}
}

func TestEngine_TruncatedObjectList(t *testing.T) {
	report := newTestEngine(t).Extract(`{"missing_skills": {"critical": [{"skill": "Kubernetes", "reason": "needed"}, {"skill": "Helm`)

	assert.Equal(t, []Skill{
		{Label: "Kubernetes", Tier: TierCritical, Provenance: ProvenanceFallbackPattern},
		{Label: "Helm", Tier: TierCritical, Provenance: ProvenanceFallbackPattern},
	}, report.Skills)
}

func TestEngine_NoiseFiltering(t *testing.T) {
	input := `{
		"missing_skills": {
			"critical": ["Deep Learning", "2024-06-07T12:00:00"],
			"important": ["model_used", "v0.2 upgrade", "07T"]
		},
		"model_used": "gemini-2.5-pro",
		"timestamp": "2024-06-07T12:00:00Z"
	}`

	report := newTestEngine(t).Extract(input)

	assert.Equal(t, []string{"Deep Learning"}, report.Labels())
}

func TestEngine_NoiseFilteringOnFallbackPath(t *testing.T) {
	input := `{"critical": ["Deep Learning", "model_used"], "important": ["v0.2", "2025-01-07T09`

	report := newTestEngine(t).Extract(input)

	assert.Equal(t, []string{"Deep Learning"}, report.Labels())
	assert.Equal(t, "fallback-pattern", report.Strategy)
}

func TestEngine_EscapedEnvelope(t *testing.T) {
	input := `{"error": "Failed to parse JSON", "raw_response": "{\"missing_skills\": {\"critical\": [\"Kubernetes\"], \"important\": [\"Helm\"]}}"}`

	report := newTestEngine(t).Extract(input)

	assert.Equal(t, []string{"Kubernetes"}, report.ByTier(TierCritical))
	assert.Equal(t, []string{"Helm"}, report.ByTier(TierImportant))
}

func TestEngine_ProseEnvelopeIsUnwrapped(t *testing.T) {
	input := `{"error": "Failed to parse JSON", "raw_response": "The candidate lacks Kubernetes and Terraform experience."}`

	report := newTestEngine(t).Extract(input)

	assert.Equal(t, []Skill{
		{Label: "Kubernetes", Provenance: ProvenanceKeywordHarvest},
		{Label: "Terraform", Provenance: ProvenanceKeywordHarvest},
	}, report.Skills)
	assert.Equal(t, "schema-walk", report.Strategy)
}

func TestEngine_ProseKeywordHarvest(t *testing.T) {
	report := newTestEngine(t).Extract("You should learn Docker and Kubernetes before applying; docker especially.")

	assert.Equal(t, []Skill{
		{Label: "Docker", Provenance: ProvenanceKeywordHarvest},
		{Label: "Kubernetes", Provenance: ProvenanceKeywordHarvest},
	}, report.Skills)
	assert.Equal(t, "keyword-harvest", report.Strategy)
}

func TestEngine_FencedDocument(t *testing.T) {
	input := "```json\n{\"missing_skills\": {\"important\": [\"GraphQL\"]}}\n```"

	report := newTestEngine(t).Extract(input)

	assert.Equal(t, []Skill{
		{Label: "GraphQL", Tier: TierImportant, Provenance: ProvenanceSchemaWalk},
	}, report.Skills)
}

func TestEngine_TierConflictAcrossOccurrences(t *testing.T) {
	report := newTestEngine(t).Extract(`"important": ["Docker", "Helm"], "critical": ["docker"`)

	assert.Equal(t, []Skill{
		{Label: "Docker", Tier: TierCritical, Provenance: ProvenanceFallbackPattern},
		{Label: "Helm", Tier: TierImportant, Provenance: ProvenanceFallbackPattern},
	}, report.Skills)
}

func TestEngine_Totality(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"No skill gaps detected.",
		"\x00\x01\xff\xfe binary \xc3\x28",
		`{"missing_skills": {}}`,
		`{"missing_skills": null}`,
		`"critical": [`,
		`"critical":`,
		`"skill_focus": "`,
		`[]`,
		`null`,
		`"just a string"`,
		strings.Repeat("[", 5000),
		strings.Repeat(`{"critical": ["A1", `, 200),
		strings.Repeat(`\`, 1000) + `_`,
	}

	e := newTestEngine(t)
	for _, input := range inputs {
		var report Report
		assert.NotPanics(t, func() { report = e.Extract(input) }, "input %q", truncate(input, 40))
		assertReportInvariants(t, report)
	}
}

func TestEngine_EmptyResultIsValid(t *testing.T) {
	report := newTestEngine(t).Extract(`{"missing_skills": {"critical": [], "important": []}, "recommended_projects": []}`)

	assert.True(t, report.Empty())
	assert.NotNil(t, report.Skills)
	assert.Empty(t, report.Strategy)
}

func TestEngine_DecodedDocumentWithoutGapsStaysEmpty(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Prose in other fields", `{"missing_skills":{"critical":[],"important":[],"nice_to_have":[]},"summary":"The candidate already has strong Python and Docker skills."}`},
		{"Null tier beside advice", `{"missing_skills": {"critical": null}, "advice": "Keep practicing Kubernetes."}`},
		{"Unrecognized document", `{"summary": "Solid Kubernetes and Terraform background."}`},
	}

	e := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := e.Extract(tt.input)
			assert.True(t, report.Empty())
			assert.NotNil(t, report.Skills)
			assert.Empty(t, report.Strategy)
		})
	}
}

func TestEngine_InjectedVocabulary(t *testing.T) {
	opts := DefaultOptions()
	opts.Vocabulary = []string{"Elixir", "Phoenix"}

	e, err := New(opts, nil)
	require.NoError(t, err)

	report := e.Extract("Build a chat service with Elixir and Phoenix, then port it to Python.")
	assert.Equal(t, []string{"Elixir", "Phoenix"}, report.Labels())
}

func TestEngine_ConcurrentUse(t *testing.T) {
	e := newTestEngine(t)
	inputs := []string{
		`{"missing_skills":{"critical":["Deep Learning"],"important":["Data Visualization"]}}`,
		`"critical": ["Deep Learning"`,
		"Learn Docker and Kubernetes",
	}
	expected := make([]Report, len(inputs))
	for i, in := range inputs {
		expected[i] = e.Extract(in)
	}

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, in := range inputs {
				assert.Equal(t, expected[i], e.Extract(in))
			}
		}()
	}
	wg.Wait()
}

func TestNew_InvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.TierFieldAliases = map[Tier][]string{"urgent": {"urgent"}}

	_, err := New(opts, nil)
	assert.Error(t, err)

	assert.Panics(t, func() { MustNew(opts, nil) })
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
