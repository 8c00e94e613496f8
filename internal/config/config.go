// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/skillgap/internal/skillgap"
)

// Environment variables read by FromEnv.
const (
	EnvAPIKey      = "GEMINI_API_KEY"
	EnvDatabaseURL = "DATABASE_URL"
	EnvPort        = "PORT"
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; list fields left empty keep the engine defaults.
type Config struct {
	// Engine tables. A list replaces the default unless the matching Extend flag is set.
	TierFieldAliases   map[string][]string `json:"tier_field_aliases,omitempty" yaml:"tier_field_aliases,omitempty" validate:"omitempty,dive,keys,oneof=critical important nice_to_have,endkeys,min=1,dive,required"`
	SectionAliases     []string            `json:"section_aliases,omitempty" yaml:"section_aliases,omitempty" validate:"omitempty,dive,required"`
	ProjectListAliases []string            `json:"project_list_aliases,omitempty" yaml:"project_list_aliases,omitempty" validate:"omitempty,dive,required"`
	SkillFocusAliases  []string            `json:"skill_focus_aliases,omitempty" yaml:"skill_focus_aliases,omitempty" validate:"omitempty,dive,required"`
	ProjectAliases     []string            `json:"project_aliases,omitempty" yaml:"project_aliases,omitempty" validate:"omitempty,dive,required"`
	EnvelopeAliases    []string            `json:"envelope_aliases,omitempty" yaml:"envelope_aliases,omitempty" validate:"omitempty,dive,required"`
	DenyListSubstrings []string            `json:"deny_list_substrings,omitempty" yaml:"deny_list_substrings,omitempty" validate:"omitempty,dive,required"`
	PlaceholderLabels  []string            `json:"placeholder_labels,omitempty" yaml:"placeholder_labels,omitempty" validate:"omitempty,dive,required"`
	DenyPatterns       []string            `json:"deny_patterns,omitempty" yaml:"deny_patterns,omitempty" validate:"omitempty,dive,required"`
	Vocabulary         []string            `json:"vocabulary,omitempty" yaml:"vocabulary,omitempty" validate:"omitempty,dive,required"`
	ExtendVocabulary   bool                `json:"extend_vocabulary,omitempty" yaml:"extend_vocabulary,omitempty"`
	ExtendDenyList     bool                `json:"extend_deny_list,omitempty" yaml:"extend_deny_list,omitempty"`
	LabelLengthBounds  *skillgap.Bounds    `json:"label_length_bounds,omitempty" yaml:"label_length_bounds,omitempty" validate:"omitempty"`

	// Service
	APIKey      string `json:"api_key,omitempty" yaml:"api_key,omitempty"`           // Gemini API key
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL
	Port        int    `json:"port,omitempty" yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	ModelTier   string `json:"model_tier,omitempty" yaml:"model_tier,omitempty" validate:"omitempty,oneof=lite standard advanced"`
	Concurrency int    `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"omitempty,min=1,max=64"` // Parallel extractions in batch mode
	Verbose     bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Defaults returns the built-in service settings.
func Defaults() Config {
	return Config{
		Port:        8080,
		ModelTier:   "standard",
		Concurrency: 4,
	}
}

// FromEnv returns a Config holding only the values set in the environment.
func FromEnv() Config {
	cfg := Config{
		APIKey:      os.Getenv(EnvAPIKey),
		DatabaseURL: os.Getenv(EnvDatabaseURL),
	}
	if port, err := strconv.Atoi(os.Getenv(EnvPort)); err == nil {
		cfg.Port = port
	}
	return cfg
}

// LoadConfig loads configuration from a JSON file, or a YAML file when the extension
// is .yaml or .yml. Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks field ranges with struct tags and that the engine tables the file
// produces are usable.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if _, err := c.EngineOptions(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// It is used to layer a config file over the environment and built-in defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ModelTier == "" {
		result.ModelTier = defaults.ModelTier
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}

	if len(result.TierFieldAliases) == 0 {
		result.TierFieldAliases = defaults.TierFieldAliases
	}
	if len(result.Vocabulary) == 0 {
		result.Vocabulary = defaults.Vocabulary
	}
	if len(result.DenyListSubstrings) == 0 {
		result.DenyListSubstrings = defaults.DenyListSubstrings
	}
	if result.LabelLengthBounds == nil {
		result.LabelLengthBounds = defaults.LabelLengthBounds
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// EngineOptions applies the engine tables of the config over skillgap.DefaultOptions
// and validates the result.
func (c *Config) EngineOptions() (skillgap.Options, error) {
	opts := skillgap.DefaultOptions()

	for tier, aliases := range c.TierFieldAliases {
		opts.TierFieldAliases[skillgap.Tier(tier)] = aliases
	}
	replaceIfSet(&opts.SectionAliases, c.SectionAliases)
	replaceIfSet(&opts.ProjectListAliases, c.ProjectListAliases)
	replaceIfSet(&opts.SkillFocusAliases, c.SkillFocusAliases)
	replaceIfSet(&opts.ProjectAliases, c.ProjectAliases)
	replaceIfSet(&opts.EnvelopeAliases, c.EnvelopeAliases)
	replaceIfSet(&opts.PlaceholderLabels, c.PlaceholderLabels)
	replaceIfSet(&opts.DenyPatterns, c.DenyPatterns)

	if c.ExtendVocabulary {
		opts.Vocabulary = append(opts.Vocabulary, c.Vocabulary...)
	} else {
		replaceIfSet(&opts.Vocabulary, c.Vocabulary)
	}
	if c.ExtendDenyList {
		opts.DenyListSubstrings = append(opts.DenyListSubstrings, c.DenyListSubstrings...)
	} else {
		replaceIfSet(&opts.DenyListSubstrings, c.DenyListSubstrings)
	}

	if c.LabelLengthBounds != nil {
		opts.LabelLengthBounds = *c.LabelLengthBounds
	}

	if err := opts.Validate(); err != nil {
		return skillgap.Options{}, err
	}
	return opts, nil
}

func replaceIfSet(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}
