package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/skillgap/internal/analysis"
	"github.com/jonathan/skillgap/internal/db"
	"github.com/jonathan/skillgap/internal/skillgap"
)

// maxBodyBytes bounds request bodies; model output and documents are well below it.
const maxBodyBytes = 1 << 20

// ExtractRequest is the JSON body of POST /extract
type ExtractRequest struct {
	Text     string `json:"text"`
	JobTitle string `json:"job_title,omitempty"`
	Save     bool   `json:"save,omitempty"`
}

// AnalyzeRequest is the JSON body of POST /analyze
type AnalyzeRequest struct {
	analysis.Request
	Save bool `json:"save,omitempty"`
}

// ReportResponse is returned by the extract, analyze and report endpoints.
type ReportResponse struct {
	ID        *uuid.UUID      `json:"id,omitempty"`
	Report    skillgap.Report `json:"report"`
	Model     string          `json:"model,omitempty"`
	Attempts  int             `json:"attempts,omitempty"`
	JobTitle  string          `json:"job_title,omitempty"`
	Source    string          `json:"source,omitempty"`
	Refreshed bool            `json:"refreshed,omitempty"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"analyze":     s.analyzer != nil,
		"persistence": s.store != nil,
	})
}

// handleExtract runs the engine over model output sent as JSON ({"text": ...}) or
// as a raw text body.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	var req ExtractRequest
	if isJSON(r) {
		if err := json.Unmarshal(body, &req); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	} else {
		req.Text = string(body)
	}

	if req.Save && s.store == nil {
		s.errorFromErr(w, &ErrUnavailable{Feature: "persistence"})
		return
	}

	report := s.engine.Extract(req.Text)
	resp := ReportResponse{Report: report, JobTitle: req.JobTitle}

	if req.Save {
		stored, err := s.store.SaveReport(r.Context(), &db.ReportInput{
			Source:      db.SourceExtract,
			JobTitle:    req.JobTitle,
			Report:      report,
			RawResponse: req.Text,
		})
		if err != nil {
			s.errorFromErr(w, err)
			return
		}
		resp.ID = &stored.ID
		resp.Source = stored.Source
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleAnalyze compares a resume with a job posting using the model.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		s.errorFromErr(w, &ErrUnavailable{Feature: "analysis"})
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Save && s.store == nil {
		s.errorFromErr(w, &ErrUnavailable{Feature: "persistence"})
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), req.Request)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	resp := ReportResponse{
		Report:   result.Report,
		Model:    result.Model,
		Attempts: result.Attempts,
		JobTitle: req.JobTitle,
	}

	if req.Save {
		stored, err := s.store.SaveReport(r.Context(), &db.ReportInput{
			Source:      db.SourceAnalyze,
			JobTitle:    req.JobTitle,
			Model:       result.Model,
			Report:      result.Report,
			RawResponse: result.Raw,
		})
		if err != nil {
			s.errorFromErr(w, err)
			return
		}
		resp.ID = &stored.ID
		resp.Source = stored.Source
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleGetReport returns a stored report.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.reportID(w, r)
	if !ok {
		return
	}

	stored, ok := s.loadReport(w, r, id)
	if !ok {
		return
	}

	s.jsonResponse(w, http.StatusOK, storedResponse(stored))
}

// handleRefreshReport extracts a stored response again and replaces the saved
// skills with the result.
func (s *Server) handleRefreshReport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.reportID(w, r)
	if !ok {
		return
	}

	stored, ok := s.loadReport(w, r, id)
	if !ok {
		return
	}

	raw, _ := analysis.UnwrapEnvelope(stored.RawResponse, s.engine.Options().EnvelopeAliases...)
	stored.Report = s.engine.Extract(raw)
	if err := s.store.UpdateReportSkills(r.Context(), id, stored.Report); err != nil {
		s.errorFromErr(w, err)
		return
	}

	resp := storedResponse(stored)
	resp.Refreshed = true
	s.jsonResponse(w, http.StatusOK, resp)
}

// reportID parses the {id} path value. It writes the error response itself when
// persistence is off or the ID is malformed.
func (s *Server) reportID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if s.store == nil {
		s.errorFromErr(w, &ErrUnavailable{Feature: "persistence"})
		return uuid.Nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorFromErr(w, &ErrValidation{Field: "id", Message: "invalid report ID"})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) loadReport(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*db.StoredReport, bool) {
	stored, err := s.store.GetReport(r.Context(), id)
	if err != nil {
		s.errorFromErr(w, err)
		return nil, false
	}
	if stored == nil {
		s.errorFromErr(w, &ErrNotFound{Resource: "report", ID: id.String()})
		return nil, false
	}
	return stored, true
}

// handleListReports lists stored reports, newest first.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorFromErr(w, &ErrUnavailable{Feature: "persistence"})
		return
	}

	filters, err := parseReportFilters(r)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	reports, err := s.store.ListReports(r.Context(), filters)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	out := make([]ReportResponse, 0, len(reports))
	for i := range reports {
		out = append(out, storedResponse(&reports[i]))
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"reports": out,
		"count":   len(out),
	})
}

func parseReportFilters(r *http.Request) (db.ReportFilters, error) {
	q := r.URL.Query()
	filters := db.ReportFilters{Source: q.Get("source")}

	switch filters.Source {
	case "", db.SourceExtract, db.SourceAnalyze:
	default:
		return filters, &ErrValidation{Field: "source", Message: "must be extract or analyze"}
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &filters.Limit}, {"offset", &filters.Offset}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filters, &ErrValidation{Field: p.name, Message: "must be a non-negative integer"}
		}
		*p.dst = n
	}
	return filters, nil
}

func storedResponse(stored *db.StoredReport) ReportResponse {
	id := stored.ID
	return ReportResponse{
		ID:       &id,
		Report:   stored.Report,
		Model:    stored.Model,
		JobTitle: stored.JobTitle,
		Source:   stored.Source,
	}
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

