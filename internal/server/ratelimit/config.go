package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule is the rate limit for one endpoint prefix and method.
type Rule struct {
	Path   string        // Endpoint path prefix
	Method string        // HTTP method
	Limit  int           // Requests per window; <= 0 means unlimited
	Window time.Duration // Refill window
	Burst  int           // Burst capacity, defaults to Limit
}

// Config holds the limiter configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Exempt          map[string]bool // Client IDs never limited
	Rules           []Rule
}

// LoadConfig builds the limiter configuration from environment variables.
func LoadConfig() *Config {
	enabled := envBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envInt("RATE_LIMIT_DEFAULT_LIMIT", 300),
		DefaultWindow:   envDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: envDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Exempt:          parseList(os.Getenv("RATE_LIMIT_EXEMPT")),
		Rules:           DefaultRules(),
	}
}

// DefaultRules returns the endpoint tiers. Start and answer each trigger LLM
// calls, so they carry the strictest limits; reads use the default tier and
// health stays unlimited.
func DefaultRules() []Rule {
	return []Rule{
		{Path: "/api/interviews/start", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/api/interviews/answer", Method: "POST", Limit: 120, Window: time.Hour, Burst: 10},
		{Path: "/api/interviews/", Method: "DELETE", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/health", Method: "GET", Limit: 0},
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseList(list string) map[string]bool {
	out := make(map[string]bool)
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out[item] = true
		}
	}
	return out
}
