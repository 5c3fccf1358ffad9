package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain JSON untouched",
			input:    `{"question": "What is a mutex?"}`,
			expected: `{"question": "What is a mutex?"}`,
		},
		{
			name:     "json fenced block",
			input:    "```json\n{\"score\": 0.8}\n```",
			expected: `{"score": 0.8}`,
		},
		{
			name:     "generic fenced block",
			input:    "```\n{\"score\": 0.8}\n```",
			expected: `{"score": 0.8}`,
		},
		{
			name:     "fenced block with language identifier",
			input:    "```javascript\n{\"score\": 0.8}\n```",
			expected: `{"score": 0.8}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n{\"a\": 1}\n  ",
			expected: `{"a": 1}`,
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestRepairTrailingCommas(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, RepairTrailingCommas(`{"a": 1,}`))
	assert.Equal(t, "{\"a\": 1\n}", RepairTrailingCommas("{\"a\": 1,\n}"))
	assert.Equal(t, `["a"]`, RepairTrailingCommas(`["a",]`))
	assert.Equal(t, `{"a": [1, 2]}`, RepairTrailingCommas(`{"a": [1, 2]}`))
}

func TestConfigTemperature(t *testing.T) {
	cfg := DefaultConfig()

	assert.InDelta(t, 0.2, float64(cfg.Temperature(RoleQuestion)), 1e-6)
	assert.InDelta(t, 0.3, float64(cfg.Temperature(RoleGrader)), 1e-6)
	assert.InDelta(t, 0.2, float64(cfg.Temperature(RoleRewrite)), 1e-6)
	// Unknown roles fall back to the question temperature.
	assert.InDelta(t, 0.2, float64(cfg.Temperature(TaskRole("other"))), 1e-6)

	// The grader must stay hotter than the question role; grading generosity
	// depends on it.
	assert.Greater(t, cfg.Temperature(RoleGrader), cfg.Temperature(RoleQuestion))
}

func TestConfigWithModel(t *testing.T) {
	base := DefaultConfig()
	derived := base.WithModel("gemini-2.5-pro")

	assert.Equal(t, "gemini-2.5-pro", derived.Model)
	assert.NotEqual(t, base.Model, derived.Model)
	assert.Equal(t, base.Temperatures[RoleGrader], derived.Temperatures[RoleGrader])
}
