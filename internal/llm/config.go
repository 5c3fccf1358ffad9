// Package llm provides centralized LLM configuration and client abstractions.
// This package enables per-task model/temperature selection and future
// multi-provider support.
package llm

// TaskRole identifies which interview task a call belongs to. Each role can
// carry its own sampling temperature.
type TaskRole string

const (
	// RoleQuestion generates the opening interview question.
	RoleQuestion TaskRole = "question"
	// RoleGrader grades candidate answers against the rubric.
	RoleGrader TaskRole = "grader"
	// RoleRewrite sanitizes follow-up questions into theory-only phrasing.
	RoleRewrite TaskRole = "rewrite"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider (future)
	ProviderOpenAI Provider = "openai"
)

// Config holds the model configuration for the interview engine.
type Config struct {
	Provider     Provider
	Model        string
	Temperatures map[TaskRole]float32
}

// DefaultConfig returns the default configuration (currently Gemini).
//
// The grader runs hotter than the question and rewrite roles on purpose:
// a slightly higher temperature biases grading toward generosity, which is a
// product decision, not an accident.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Model:    "gemini-2.5-flash",
		Temperatures: map[TaskRole]float32{
			RoleQuestion: 0.2,
			RoleGrader:   0.3,
			RoleRewrite:  0.2,
		},
	}
}

// Temperature returns the sampling temperature for a role, falling back to
// the question role's temperature for unknown roles.
func (c *Config) Temperature(role TaskRole) float32 {
	if t, ok := c.Temperatures[role]; ok {
		return t
	}
	if t, ok := c.Temperatures[RoleQuestion]; ok {
		return t
	}
	return 0.2
}

// WithModel returns a copy of the Config using a different model name.
func (c *Config) WithModel(model string) *Config {
	out := &Config{
		Provider:     c.Provider,
		Model:        model,
		Temperatures: make(map[TaskRole]float32, len(c.Temperatures)),
	}
	for k, v := range c.Temperatures {
		out.Temperatures[k] = v
	}
	return out
}
