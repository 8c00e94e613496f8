package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/skillgap/internal/skillgap"
)

// SaveReport stores a report and returns it with its new ID and timestamp.
func (db *DB) SaveReport(ctx context.Context, input *ReportInput) (*StoredReport, error) {
	skills := input.Report.Skills
	if skills == nil {
		skills = []skillgap.Skill{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal skills: %w", err)
	}

	stored := &StoredReport{
		ID:          uuid.New(),
		Source:      input.Source,
		JobTitle:    input.JobTitle,
		Model:       input.Model,
		Report:      skillgap.Report{Skills: skills, Strategy: input.Report.Strategy},
		RawResponse: input.RawResponse,
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO skill_gap_reports (id, source, job_title, model, strategy, skills, raw_response)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		stored.ID, stored.Source, stored.JobTitle, stored.Model, stored.Report.Strategy, skillsJSON, stored.RawResponse,
	).Scan(&stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	return stored, nil
}

// GetReport retrieves a report by ID. Returns nil, nil when it does not exist.
func (db *DB) GetReport(ctx context.Context, id uuid.UUID) (*StoredReport, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, source, job_title, model, strategy, skills, raw_response, created_at
		 FROM skill_gap_reports WHERE id = $1`,
		id,
	)
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}
	return report, nil
}

// ListReports retrieves recent reports, newest first.
func (db *DB) ListReports(ctx context.Context, filters ReportFilters) ([]StoredReport, error) {
	filters = filters.normalized()

	query := `SELECT id, source, job_title, model, strategy, skills, raw_response, created_at
		FROM skill_gap_reports WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Source != "" {
		query += fmt.Sprintf(" AND source = $%d", argNum)
		args = append(args, filters.Source)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filters.Limit, filters.Offset)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []StoredReport{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// UpdateReportSkills replaces the skills of a stored report, used after re-extraction.
func (db *DB) UpdateReportSkills(ctx context.Context, id uuid.UUID, report skillgap.Report) error {
	skillsJSON, err := json.Marshal(report.Skills)
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE skill_gap_reports SET skills = $1, strategy = $2 WHERE id = $3`,
		skillsJSON, report.Strategy, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("report not found: %s", id)
	}
	return nil
}

func scanReport(row pgx.Row) (*StoredReport, error) {
	var (
		r          StoredReport
		skillsJSON []byte
		createdAt  time.Time
	)
	if err := row.Scan(&r.ID, &r.Source, &r.JobTitle, &r.Model, &r.Report.Strategy, &skillsJSON, &r.RawResponse, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(skillsJSON, &r.Report.Skills); err != nil {
		return nil, fmt.Errorf("failed to decode skills: %w", err)
	}
	if r.Report.Skills == nil {
		r.Report.Skills = []skillgap.Skill{}
	}
	r.CreatedAt = createdAt
	return &r, nil
}
