// Package analysis asks the model for a skill-gap analysis of a resume against a job
// posting and recovers a report from whatever comes back.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/skillgap/internal/llm"
	"github.com/jonathan/skillgap/internal/prompts"
	"github.com/jonathan/skillgap/internal/skillgap"
)

// Input limits keep prompts well inside the model context.
const (
	maxResumeRunes     = 8000
	maxJobPostingRunes = 6000
	defaultMaxAttempts = 2
)

// Request is one resume and job posting to compare.
type Request struct {
	Resume     string `json:"resume" validate:"required"`
	JobPosting string `json:"job_posting" validate:"required"`
	JobTitle   string `json:"job_title,omitempty" validate:"omitempty,max=200"`
	ModelTier  string `json:"model_tier,omitempty" validate:"omitempty,oneof=lite standard advanced"`
}

// Validate checks the request fields.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Resume) == "" {
		return &ValidationError{Field: "resume", Message: "is required"}
	}
	if strings.TrimSpace(r.JobPosting) == "" {
		return &ValidationError{Field: "job_posting", Message: "is required"}
	}
	if err := validator.New().Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &ValidationError{Field: fieldErrs[0].Field(), Message: fieldErrs[0].Error()}
		}
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

// Result is a recovered report plus what is needed to store and audit it.
type Result struct {
	Report   skillgap.Report `json:"report"`
	Model    string          `json:"model"`
	Attempts int             `json:"attempts"`
	// Raw is the stored form of the last response: the text itself when it decoded,
	// otherwise an error envelope around it.
	Raw string `json:"-"`
}

// Analyzer runs skill-gap analyses. It is safe for concurrent use.
type Analyzer struct {
	client      llm.Client
	engine      *skillgap.Engine
	maxAttempts int
	logger      *slog.Logger
}

// New creates an Analyzer. A nil logger uses slog.Default().
func New(client llm.Client, engine *skillgap.Engine, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		client:      client,
		engine:      engine,
		maxAttempts: defaultMaxAttempts,
		logger:      logger.With("component", "analysis"),
	}
}

// Analyze builds the prompt, calls the model and extracts a report. A response with
// no recoverable skills is retried once with a reminder to answer in JSON; an empty
// report after that is returned as a valid result.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	tier, err := llm.ParseModelTier(req.ModelTier)
	if err != nil {
		return nil, &ValidationError{Field: "model_tier", Message: err.Error()}
	}

	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	result := &Result{Model: a.client.GetModel(tier)}
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		result.Attempts = attempt

		text, err := a.client.GenerateJSON(ctx, prompt, tier)
		if err != nil {
			return nil, &APICallError{Message: fmt.Sprintf("skill-gap analysis attempt %d", attempt), Cause: err}
		}

		result.Report = a.engine.Extract(text)
		result.Raw = storedForm(text, result.Report)
		a.logger.Info("analysis attempt complete",
			"attempt", attempt,
			"model", result.Model,
			"strategy", result.Report.Strategy,
			"skills", len(result.Report.Skills))

		if !result.Report.Empty() {
			break
		}
		prompt += "\n\n" + prompts.MustGet(prompts.SkillGapFile, "retry-suffix")
	}

	return result, nil
}

// Reextract runs the engine again over a stored response, unwrapping an error
// envelope first. It lets old responses benefit from a grown vocabulary.
func (a *Analyzer) Reextract(stored string) skillgap.Report {
	raw, _ := UnwrapEnvelope(stored, a.engine.Options().EnvelopeAliases...)
	return a.engine.Extract(raw)
}

// BuildPrompt renders the skill-gap prompt for req.
func BuildPrompt(req Request) (string, error) {
	title := ""
	if req.JobTitle != "" {
		title = " for a " + req.JobTitle + " role"
	}
	preamble, err := prompts.Render(prompts.SkillGapFile, "analyze-preamble", map[string]string{"JobTitle": title})
	if err != nil {
		return "", err
	}

	return llm.BuildExtractionPrompt(
		llm.SkillGapSchema(preamble),
		llm.PromptSection{Title: "Resume", Body: truncateRunes(req.Resume, maxResumeRunes)},
		llm.PromptSection{Title: "Job posting", Body: truncateRunes(req.JobPosting, maxJobPostingRunes)},
	), nil
}

// storedForm keeps responses the schema walk read as-is and wraps everything else in
// an envelope recording why.
func storedForm(text string, report skillgap.Report) string {
	if report.Strategy == string(skillgap.ProvenanceSchemaWalk) {
		return text
	}
	if report.Empty() {
		return WrapEnvelope("no skills recovered", text)
	}
	return WrapEnvelope("response was not a complete JSON document", text)
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
