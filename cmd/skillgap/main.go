// Package main provides the skillgap CLI: recover skill-gap reports from model output,
// run analyses against Gemini, validate reports and serve the HTTP API.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/skillgap/internal/config"
	"github.com/jonathan/skillgap/internal/skillgap"
)

var rootCmd = &cobra.Command{
	Use:   "skillgap",
	Short: "Skill-gap report extraction",
	Long: `skillgap recovers an ordered list of missing skills from generative-model output,
tolerating truncated, escaped and prose responses.

Configuration can be loaded from a JSON or YAML file using --config. Environment
variables (GEMINI_API_KEY, DATABASE_URL, PORT) fill in anything the file leaves unset.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging(verbose)
	},
}

var (
	configPath string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging installs a text slog handler on stderr; verbose enables debug output.
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig layers the config file (if any) over the environment and built-in
// defaults, then validates the result.
func loadConfig(path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	env := config.FromEnv()
	cfg = cfg.MergeWithDefaults(env.MergeWithDefaults(config.Defaults()))

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newEngine builds the extraction engine from the config tables.
func newEngine(cfg config.Config) (*skillgap.Engine, error) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, fmt.Errorf("invalid engine options: %w", err)
	}
	return skillgap.New(opts, slog.Default())
}
