// Package config provides configuration loading and validation for the CLI
// and server. Values come from a JSON file, the environment, and CLI flags,
// in that order of increasing precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Environment variables consulted for the API key, in order.
var apiKeyEnvVars = []string{"LLM_API_KEY", "GEMINI_API_KEY"}

// Config represents the interview engine configuration. All fields are
// optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Dataset string `json:"dataset,omitempty"` // Path to the JSONL sample dataset
	Outfile string `json:"outfile,omitempty"` // Path to the JSONL record sink

	// Interview shape
	Rounds     int    `json:"rounds,omitempty"`     // Rounds per session
	Competency string `json:"competency,omitempty"` // Competency to target; empty picks by weight

	// LLM
	Model          string `json:"model,omitempty"`           // Model name override
	APIKey         string `json:"api_key,omitempty"`         // API key (env vars win over the file)
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"` // Per-call LLM timeout

	// Banding thresholds as strict upper bounds; zero values use the engine
	// defaults.
	BandL2 float64 `json:"band_l2,omitempty"`
	BandL3 float64 `json:"band_l3,omitempty"`
	BandL4 float64 `json:"band_l4,omitempty"`

	// Server
	Addr       string `json:"addr,omitempty"`        // Listen address, e.g. ":8080"
	TTLMinutes int    `json:"ttl_minutes,omitempty"` // Idle session lifetime

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Default values applied by MergeWithDefaults when neither the file nor the
// caller set a field.
const (
	DefaultRounds     = 3
	DefaultTimeoutSec = 30
	DefaultAddr       = ":8080"
	DefaultTTLMinutes = 120
	DefaultOutfile    = "eval_records.jsonl"
)

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
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
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ResolveAPIKey returns the API key, preferring the environment over the
// config file so keys stay out of checked-in configs.
func (c *Config) ResolveAPIKey() string {
	for _, name := range apiKeyEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return c.APIKey
}

// Timeout returns the per-call LLM timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TTL returns the idle session lifetime as a duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Rounds < 0 {
		return fmt.Errorf("config error: 'rounds' must be non-negative")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'timeout_seconds' must be non-negative")
	}
	if c.TTLMinutes < 0 {
		return fmt.Errorf("config error: 'ttl_minutes' must be non-negative")
	}

	// Thresholds are all-or-nothing: a partial override would silently mix
	// schemes.
	set := 0
	for _, v := range []float64{c.BandL2, c.BandL3, c.BandL4} {
		if v != 0 {
			set++
		}
	}
	if set != 0 && set != 3 {
		return fmt.Errorf("config error: band thresholds must be set together or not at all")
	}
	if set == 3 && !(c.BandL2 < c.BandL3 && c.BandL3 < c.BandL4 && c.BandL2 > 0 && c.BandL4 < 1) {
		return fmt.Errorf("config error: band thresholds must be strictly increasing within (0,1)")
	}

	// Validate file paths exist (if specified)
	if c.Dataset != "" {
		if _, err := os.Stat(c.Dataset); os.IsNotExist(err) {
			return fmt.Errorf("config error: dataset file not found: %s", c.Dataset)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults, and engine defaults applied where both are unset. This is used to
// apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Dataset == "" {
		result.Dataset = defaults.Dataset
	}
	if result.Outfile == "" {
		result.Outfile = defaults.Outfile
	}
	if result.Outfile == "" {
		result.Outfile = DefaultOutfile
	}
	if result.Competency == "" {
		result.Competency = defaults.Competency
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Addr == "" {
		result.Addr = defaults.Addr
	}
	if result.Addr == "" {
		result.Addr = DefaultAddr
	}

	// Int fields: use default if zero
	if result.Rounds == 0 {
		result.Rounds = defaults.Rounds
	}
	if result.Rounds == 0 {
		result.Rounds = DefaultRounds
	}
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = DefaultTimeoutSec
	}
	if result.TTLMinutes == 0 {
		result.TTLMinutes = defaults.TTLMinutes
	}
	if result.TTLMinutes == 0 {
		result.TTLMinutes = DefaultTTLMinutes
	}

	// Float fields: thresholds merge as a group
	if result.BandL2 == 0 && result.BandL3 == 0 && result.BandL4 == 0 {
		result.BandL2 = defaults.BandL2
		result.BandL3 = defaults.BandL3
		result.BandL4 = defaults.BandL4
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
