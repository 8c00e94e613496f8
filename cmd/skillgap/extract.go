package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/skillgap/internal/db"
	"github.com/jonathan/skillgap/internal/observability"
	"github.com/jonathan/skillgap/internal/schemas"
	"github.com/jonathan/skillgap/internal/skillgap"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Recover a skill-gap report from saved model output",
	Long: `Reads model output from one or more files (or stdin) and prints the recovered
skill-gap report as JSON. Several inputs are processed concurrently and printed in
the order given.`,
	Example: `  skillgap extract -i response.json
  skillgap extract -i a.txt -i b.txt --concurrency 8
  cat response.txt | skillgap extract`,
	RunE: runExtract,
}

var (
	extractInputs      []string
	extractOutputFile  string
	extractConcurrency int
	extractSave        bool
	extractJobTitle    string
)

func init() {
	extractCmd.Flags().StringArrayVarP(&extractInputs, "in", "i", nil, "Path to model output; repeatable, \"-\" reads stdin (default: stdin)")
	extractCmd.Flags().StringVarP(&extractOutputFile, "out", "o", "", "Write JSON output to this file instead of stdout")
	extractCmd.Flags().IntVar(&extractConcurrency, "concurrency", 0, "Inputs processed in parallel (default from config)")
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "Store each report in the database (requires DATABASE_URL)")
	extractCmd.Flags().StringVar(&extractJobTitle, "job-title", "", "Job title recorded with saved reports")

	rootCmd.AddCommand(extractCmd)
}

// extractResult pairs an input name with its report.
type extractResult struct {
	Input  string          `json:"input"`
	ID     string          `json:"id,omitempty"`
	Report skillgap.Report `json:"report"`

	raw string
}

func runExtract(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = extractConcurrency
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	inputs, err := extractInputList(extractInputs)
	if err != nil {
		return err
	}

	results, err := extractAll(ctx, engine, inputs, cfg.Concurrency, readInputFunc(os.Stdin))
	if err != nil {
		return err
	}

	for _, r := range results {
		if err := schemas.ValidateReportValue(r.Report); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: report for %s does not validate against schema: %v\n", r.Input, err)
		}
	}

	if extractSave {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL required when using --save")
		}
		if err := saveResults(ctx, cfg.DatabaseURL, results); err != nil {
			return err
		}
	}

	if verbose {
		printer := observability.NewPrinter(os.Stderr)
		for _, r := range results {
			printer.PrintReport(r.Input, r.Report)
		}
	}

	out := io.Writer(os.Stdout)
	if extractOutputFile != "" {
		f, err := os.Create(extractOutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	return writeResults(out, results)
}

// extractInputList defaults to stdin. Stdin may appear at most once.
func extractInputList(inputs []string) ([]string, error) {
	if len(inputs) == 0 {
		return []string{"-"}, nil
	}
	stdin := 0
	for _, input := range inputs {
		if input == "-" {
			stdin++
		}
	}
	if stdin > 1 {
		return nil, fmt.Errorf("stdin (\"-\") can be given at most once, got %d", stdin)
	}
	return inputs, nil
}

// extractAll runs the engine over every input with at most concurrency in flight.
// Results keep the order of inputs.
func extractAll(ctx context.Context, engine *skillgap.Engine, inputs []string, concurrency int, read func(string) ([]byte, error)) ([]extractResult, error) {
	results := make([]extractResult, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := read(input)
			if err != nil {
				return fmt.Errorf("failed to read input %s: %w", input, err)
			}
			results[i] = extractResult{
				Input:  input,
				Report: engine.Extract(string(data)),
				raw:    string(data),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// readInputFunc reads "-" from stdin and anything else from disk.
func readInputFunc(stdin io.Reader) func(string) ([]byte, error) {
	return func(path string) ([]byte, error) {
		if path == "-" {
			return io.ReadAll(stdin)
		}
		return os.ReadFile(path)
	}
}

// writeResults prints a single report as-is and several as an array of results.
func writeResults(w io.Writer, results []extractResult) error {
	var v any = results
	if len(results) == 1 && results[0].ID == "" {
		v = results[0].Report
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

func saveResults(ctx context.Context, databaseURL string, results []extractResult) error {
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}

	for i := range results {
		stored, err := database.SaveReport(ctx, &db.ReportInput{
			Source:      db.SourceExtract,
			JobTitle:    extractJobTitle,
			Report:      results[i].Report,
			RawResponse: results[i].raw,
		})
		if err != nil {
			return err
		}
		results[i].ID = stored.ID.String()
	}
	return nil
}
