// Package llm is the boundary to the generative model that produces skill-gap
// analyses. Callers depend on the Client interface; the Gemini implementation is
// the only provider wired today.
package llm

import (
	"fmt"
	"os"
)

// ModelTier represents the capability level of a model
type ModelTier string

const (
	// TierLite is for quick, cheap analyses
	TierLite ModelTier = "lite"
	// TierStandard is the default for skill-gap analysis
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long resumes or postings that need more reasoning
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// ModelEnvVar overrides the model used for TierStandard when set.
const ModelEnvVar = "GEMINI_MODEL"

// Config holds the model configuration
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32

	// MaxOutputTokens caps the response length; zero leaves the provider default.
	MaxOutputTokens int32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration. GEMINI_MODEL, if set,
// replaces the standard-tier model.
func DefaultGeminiConfig() *Config {
	cfg := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.1,
	}
	if model := os.Getenv(ModelEnvVar); model != "" {
		cfg.Models[TierStandard] = model
	}
	return cfg
}

// ParseModelTier converts a flag or request value to a ModelTier. Empty means standard.
func ParseModelTier(s string) (ModelTier, error) {
	switch ModelTier(s) {
	case "":
		return TierStandard, nil
	case TierLite, TierStandard, TierAdvanced:
		return ModelTier(s), nil
	default:
		return "", fmt.Errorf("unknown model tier %q (want lite, standard or advanced)", s)
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:        c.Provider,
		Models:          make(map[ModelTier]string, len(c.Models)+1),
		Temperature:     c.Temperature,
		MaxOutputTokens: c.MaxOutputTokens,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
