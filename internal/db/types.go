package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/skillgap/internal/skillgap"
)

// Report sources
const (
	SourceExtract = "extract"
	SourceAnalyze = "analyze"
)

// ReportInput is what SaveReport persists.
type ReportInput struct {
	Source      string
	JobTitle    string
	Model       string
	Report      skillgap.Report
	RawResponse string
}

// StoredReport is a persisted report
type StoredReport struct {
	ID        uuid.UUID       `json:"id"`
	Source    string          `json:"source"`
	JobTitle  string          `json:"job_title,omitempty"`
	Model     string          `json:"model,omitempty"`
	Report    skillgap.Report `json:"report"`
	CreatedAt time.Time       `json:"created_at"`

	RawResponse string `json:"-"`
}

// ReportFilters narrows ListReports
type ReportFilters struct {
	Source string
	Limit  int
	Offset int
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// normalized returns the filters with the limit clamped to (0, maxListLimit] and a
// non-negative offset.
func (f ReportFilters) normalized() ReportFilters {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
