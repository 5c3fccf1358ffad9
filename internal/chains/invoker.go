// Package chains implements the three LLM chains of the interview engine:
// question generation, answer grading, and follow-up rewriting. Each chain
// sends a structured prompt, decodes the JSON response, and falls back to a
// deterministic output when the model cannot produce a usable one.
package chains

import (
	"context"
	"encoding/json"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/schemas"
)

// Invoker turns one LLM call into a decoded output struct. The two
// implementations differ only in how strictly they check the response before
// decoding.
type Invoker interface {
	Invoke(ctx context.Context, client llm.Client, system, user string, role llm.TaskRole, out any) error
}

// JSONInvoker decodes the response as plain JSON, repairing trailing commas
// when the first decode fails.
type JSONInvoker struct{}

// Invoke implements Invoker.
func (JSONInvoker) Invoke(ctx context.Context, client llm.Client, system, user string, role llm.TaskRole, out any) error {
	text, err := client.GenerateJSON(ctx, system, user, role)
	if err != nil {
		return &ChainError{Chain: string(role), Message: "generation failed", Cause: err}
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		repaired := llm.RepairTrailingCommas(text)
		if err2 := json.Unmarshal([]byte(repaired), out); err2 != nil {
			return &ChainError{Chain: string(role), Message: "response is not valid JSON", Cause: err}
		}
	}
	return nil
}

// SchemaInvoker validates the response against an embedded JSON Schema before
// decoding, so structurally wrong responses are rejected with field paths
// instead of silently producing zero values. With an empty Schema the schema
// is chosen from the task role, which lets one instance serve all chains.
type SchemaInvoker struct {
	Schema string
}

// Invoke implements Invoker.
func (s SchemaInvoker) Invoke(ctx context.Context, client llm.Client, system, user string, role llm.TaskRole, out any) error {
	text, err := client.GenerateJSON(ctx, system, user, role)
	if err != nil {
		return &ChainError{Chain: string(role), Message: "generation failed", Cause: err}
	}

	schema := s.Schema
	if schema == "" {
		schema = schemaFor(role)
	}

	data := []byte(llm.RepairTrailingCommas(text))
	if err := schemas.ValidateBytes(schema, data); err != nil {
		return &ChainError{Chain: string(role), Message: "response failed schema validation", Cause: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ChainError{Chain: string(role), Message: "response is not valid JSON", Cause: err}
	}
	return nil
}

// schemaFor maps a task role to its response schema.
func schemaFor(role llm.TaskRole) string {
	switch role {
	case llm.RoleGrader:
		return schemas.GradeOutput
	case llm.RoleRewrite:
		return schemas.RewrittenQuestion
	default:
		return schemas.QuestionOutput
	}
}
