package llm

import "fmt"

// ConfigError indicates the client could not be constructed from the supplied
// configuration (missing credentials, unknown model). It is fatal: callers
// must not retry it.
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("llm config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
