package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/skillgap/internal/analysis"
	"github.com/jonathan/skillgap/internal/db"
	"github.com/jonathan/skillgap/internal/llm"
	"github.com/jonathan/skillgap/internal/observability"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compare a resume with a job posting using Gemini",
	Long: `Asks Gemini which skills the job posting requires that the resume does not show,
then recovers a skill-gap report from the response. Responses that are not valid
JSON still yield a report when any skills can be recovered.`,
	RunE: runAnalyze,
}

var (
	analyzeResumeFile string
	analyzeJobFile    string
	analyzeJobTitle   string
	analyzeModelTier  string
	analyzeAPIKey     string
	analyzeSave       bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeResumeFile, "resume", "r", "", "Path to resume text file (required)")
	analyzeCmd.Flags().StringVarP(&analyzeJobFile, "job", "j", "", "Path to job posting text file (required)")
	analyzeCmd.Flags().StringVar(&analyzeJobTitle, "job-title", "", "Job title used in the prompt")
	analyzeCmd.Flags().StringVar(&analyzeModelTier, "model-tier", "", "Model tier: lite, standard or advanced (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Store the report in the database (requires DATABASE_URL)")

	if err := analyzeCmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}
	if err := analyzeCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = analyzeAPIKey
	}
	if cmd.Flags().Changed("model-tier") {
		cfg.ModelTier = analyzeModelTier
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}
	if analyzeSave && cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL required when using --save")
	}

	resume, err := os.ReadFile(analyzeResumeFile)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}
	jobPosting, err := os.ReadFile(analyzeJobFile)
	if err != nil {
		return fmt.Errorf("failed to read job posting file: %w", err)
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	analyzer := analysis.New(client, engine, slog.Default())
	result, err := analyzer.Analyze(ctx, analysis.Request{
		Resume:     string(resume),
		JobPosting: string(jobPosting),
		JobTitle:   analyzeJobTitle,
		ModelTier:  cfg.ModelTier,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if verbose {
		observability.NewPrinter(os.Stderr).PrintAnalysis(result)
	}

	output := struct {
		ID string `json:"id,omitempty"`
		*analysis.Result
	}{Result: result}

	if analyzeSave {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()

		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		stored, err := database.SaveReport(ctx, &db.ReportInput{
			Source:      db.SourceAnalyze,
			JobTitle:    analyzeJobTitle,
			Model:       result.Model,
			Report:      result.Report,
			RawResponse: result.Raw,
		})
		if err != nil {
			return err
		}
		output.ID = stored.ID.String()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
