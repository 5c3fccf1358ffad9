package chains

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/policy"
	"github.com/jonathan/interview-agent/internal/prompts"
	"github.com/jonathan/interview-agent/internal/types"
)

const promptFile = "interview.json"

// maxContextChars caps the JD and resume text injected into prompts. Full
// documents blow the context budget without improving question quality.
const maxContextChars = 800

const (
	// DefaultMaxRetries bounds question regeneration attempts.
	DefaultMaxRetries = 3
	// DefaultCallTimeout bounds each individual LLM call.
	DefaultCallTimeout = 30 * time.Second
)

// Deterministic fallbacks. Every chain must produce an output even when the
// model is down or returns garbage, so the interview never stalls.
const (
	fallbackQuestionFmt   = "What are the key considerations for %s?"
	fallbackRationale     = "Fallback question"
	fallbackJustification = "Unable to parse grading response"
	fallbackFollowup      = "Could you elaborate on your answer?"
	fallbackRewrite       = "Could you explain the key concepts behind your approach?"
)

// Manager runs the interview chains against a single LLM client.
type Manager struct {
	client      llm.Client
	invoker     Invoker
	maxRetries  int
	callTimeout time.Duration
}

// Option customizes a Manager.
type Option func(*Manager)

// WithInvoker overrides the response invoker (e.g. JSONInvoker to skip schema
// checking).
func WithInvoker(inv Invoker) Option {
	return func(m *Manager) { m.invoker = inv }
}

// WithMaxRetries overrides the question regeneration budget.
func WithMaxRetries(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxRetries = n
		}
	}
}

// WithCallTimeout overrides the per-call LLM timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.callTimeout = d
		}
	}
}

// NewManager creates a chain manager with schema-validated responses, three
// question retries, and a 30s per-call timeout unless overridden.
func NewManager(client llm.Client, opts ...Option) *Manager {
	m := &Manager{
		client:      client,
		invoker:     SchemaInvoker{},
		maxRetries:  DefaultMaxRetries,
		callTimeout: DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GenerateQuestion produces a theory-only opening question for one competency.
// Non-compliant model outputs are retried with feedback naming the violation;
// after the retry budget is spent a deterministic fallback question is
// returned. The returned error is non-nil only when the context is done.
func (m *Manager) GenerateQuestion(ctx context.Context, sample *types.Sample, comp *types.Competency) (*types.QuestionOutput, error) {
	system := prompts.MustGet(promptFile, "question-system")
	user := prompts.Format(prompts.MustGet(promptFile, "question-user"), map[string]string{
		"JD":         truncate(sample.JD, maxContextChars),
		"Resume":     truncate(sample.Resume, maxContextChars),
		"Competency": comp.Name,
	})

	// Rejection feedback accumulates across attempts so the model sees every
	// prior violation, not just the latest one.
	var feedback string
	for attempt := 1; attempt <= m.maxRetries; attempt++ {
		var out types.QuestionOutput
		if err := m.invoke(ctx, system, user+feedback, llm.RoleQuestion, &out); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[QUESTION] attempt %d/%d failed: %v", attempt, m.maxRetries, err)
			feedback += retryFeedback("response was not valid JSON matching the required structure", "")
			continue
		}

		if err := out.Validate(); err != nil {
			log.Printf("[QUESTION] attempt %d/%d invalid output: %v", attempt, m.maxRetries, err)
			feedback += retryFeedback(err.Error(), out.Question)
			continue
		}

		if ok, reason := policy.IsTheoryQuestion(out.Question); !ok {
			log.Printf("[QUESTION] attempt %d/%d rejected: %s (%q)", attempt, m.maxRetries, reason, out.Question)
			feedback += retryFeedback(reason, out.Question)
			continue
		}

		// The model sometimes renames the competency; the requested one is
		// authoritative.
		out.Competency = comp.Name
		return &out, nil
	}

	log.Printf("[QUESTION] all %d attempts failed for %q, using fallback", m.maxRetries, comp.Name)
	return &types.QuestionOutput{
		Question:   fmt.Sprintf(fallbackQuestionFmt, comp.Name),
		Difficulty: string(types.BandL2),
		Competency: comp.Name,
		Rationale:  fallbackRationale,
	}, nil
}

// GradeAnswer scores a candidate answer against one competency's rubric
// fragment. A single attempt is made; unusable responses yield a neutral
// fallback grade rather than an error.
func (m *Manager) GradeAnswer(ctx context.Context, comp *types.Competency, question, answer string) (*types.GradeOutput, error) {
	system := prompts.MustGet(promptFile, "grader-system")
	user := prompts.Format(prompts.MustGet(promptFile, "grader-user"), map[string]string{
		"Rubric":   comp.RubricFragment(),
		"Question": question,
		"Answer":   answer,
	})

	var out types.GradeOutput
	if err := m.invoke(ctx, system, user, llm.RoleGrader, &out); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("[GRADER] grading failed, using fallback: %v", err)
		return fallbackGrade(), nil
	}

	if err := out.Validate(); err != nil {
		log.Printf("[GRADER] invalid grade output, using fallback: %v", err)
		return fallbackGrade(), nil
	}

	out.Clamp()
	return &out, nil
}

// RewriteFollowup coerces a follow-up question into theory-only phrasing.
// Already-compliant questions pass through without an LLM call, which makes
// the operation idempotent. Unusable rewrites fall back to a canned question.
func (m *Manager) RewriteFollowup(ctx context.Context, followup string) (string, error) {
	if ok, _ := policy.IsTheoryQuestion(followup); ok {
		return followup, nil
	}

	system := prompts.MustGet(promptFile, "rewrite-system")
	user := prompts.Format(prompts.MustGet(promptFile, "rewrite-user"), map[string]string{
		"Original": followup,
	})

	var out types.RewrittenQuestion
	if err := m.invoke(ctx, system, user, llm.RoleRewrite, &out); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Printf("[REWRITE] rewrite failed, using fallback: %v", err)
		return fallbackRewrite, nil
	}

	if ok, reason := policy.IsTheoryQuestion(out.Question); !ok {
		log.Printf("[REWRITE] rewritten question still non-compliant (%s), using fallback", reason)
		return fallbackRewrite, nil
	}

	return out.Question, nil
}

// invoke runs one chain call under the per-call timeout.
func (m *Manager) invoke(ctx context.Context, system, user string, role llm.TaskRole, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, m.callTimeout)
	defer cancel()
	return m.invoker.Invoke(callCtx, m.client, system, user, role, out)
}

func fallbackGrade() *types.GradeOutput {
	return &types.GradeOutput{
		Score:            0.5,
		Justification:    fallbackJustification,
		FollowupQuestion: fallbackFollowup,
	}
}

func retryFeedback(reason, prior string) string {
	if prior == "" {
		return fmt.Sprintf("\n\nYour previous response was rejected: %s. Generate a different, compliant question.", reason)
	}
	return fmt.Sprintf("\n\nYour previous question %q was rejected: %s. Generate a different, compliant question.", prior, reason)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
