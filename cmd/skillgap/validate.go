package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/skillgap/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a report JSON file against a JSON schema",
	Long: `Validates a JSON file against a JSON schema. Without --schema the embedded
skill-gap report schema is used.`,
	RunE: runValidate,
}

var (
	validateSchemaPath string
	validateJSONPath   string
)

func init() {
	validateCmd.Flags().StringVar(&validateSchemaPath, "schema", "", "Path to JSON schema file (default: embedded report schema)")
	validateCmd.Flags().StringVar(&validateJSONPath, "json", "", "Path to JSON file to validate (required)")

	if err := validateCmd.MarkFlagRequired("json"); err != nil {
		panic(fmt.Sprintf("failed to mark json flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	err := validateFile(validateSchemaPath, validateJSONPath)
	if err == nil {
		_, _ = fmt.Fprintln(os.Stdout, "Validation passed")
		return nil
	}

	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		_, _ = fmt.Fprintln(os.Stderr, "Validation failed:")
		for _, fe := range validationErr.Errors {
			_, _ = fmt.Fprintf(os.Stderr, "  - %s: %s\n", fe.Field, fe.Message)
		}
		return fmt.Errorf("validation failed")
	}
	return err
}

// validateFile checks jsonPath against schemaPath, or against the embedded report
// schema when schemaPath is empty.
func validateFile(schemaPath, jsonPath string) error {
	if schemaPath != "" {
		if resolved := schemas.ResolveSchemaPath(schemaPath); resolved != "" {
			schemaPath = resolved
		}
		return schemas.ValidateJSON(schemaPath, jsonPath)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	return schemas.ValidateReport(data)
}
