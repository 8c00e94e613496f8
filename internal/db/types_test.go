package db

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skillgap/internal/skillgap"
)

func TestReportFilters_Normalized(t *testing.T) {
	tests := []struct {
		name     string
		input    ReportFilters
		expected ReportFilters
	}{
		{"Defaults", ReportFilters{}, ReportFilters{Limit: defaultListLimit}},
		{"Keeps valid values", ReportFilters{Source: SourceAnalyze, Limit: 10, Offset: 20}, ReportFilters{Source: SourceAnalyze, Limit: 10, Offset: 20}},
		{"Clamps limit", ReportFilters{Limit: 10000}, ReportFilters{Limit: maxListLimit}},
		{"Negative offset", ReportFilters{Limit: 5, Offset: -3}, ReportFilters{Limit: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.input.normalized())
		})
	}
}

func TestStoredReport_JSONOmitsRawResponse(t *testing.T) {
	stored := StoredReport{
		ID:     uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		Source: SourceExtract,
		Report: skillgap.Report{Skills: []skillgap.Skill{
			{Label: "Kafka", Tier: skillgap.TierCritical, Provenance: skillgap.ProvenanceSchemaWalk},
		}},
		CreatedAt:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		RawResponse: `{"missing_skills": {"critical": ["Kafka"]}}`,
	}

	data, err := json.Marshal(stored)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "550e8400-e29b-41d4-a716-446655440000",
		"source": "extract",
		"report": {"skills": [{"label": "Kafka", "tier": "critical", "provenance": "schema-walk"}]},
		"created_at": "2025-01-02T03:04:05Z"
	}`, string(data))
}
