package chains

import "fmt"

// ChainError wraps a failure inside one chain invocation: transport errors,
// unparseable responses, or schema violations.
type ChainError struct {
	Chain   string
	Message string
	Cause   error
}

func (e *ChainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s chain: %s: %v", e.Chain, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s chain: %s", e.Chain, e.Message)
}

func (e *ChainError) Unwrap() error {
	return e.Cause
}
