// Package types provides type definitions for structured data used throughout the interview-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Band is a coarse ordinal grade bucket derived from a continuous score.
// L1 is the weakest band, L4 the strongest.
type Band string

// Band levels, ordered weakest to strongest.
const (
	BandL1 Band = "L1"
	BandL2 Band = "L2"
	BandL3 Band = "L3"
	BandL4 Band = "L4"
)

// Sample is one (job description, resume, rubric) triple from the training
// dataset. Samples are immutable once loaded and addressed by their zero-based
// line index in the JSONL file.
type Sample struct {
	JD     string `json:"jd"`
	Resume string `json:"resume"`
	Rubric Rubric `json:"rubric"`
}

// Rubric is the full set of competencies and grading indicators for one sample.
type Rubric struct {
	Competencies []Competency `json:"competencies"`
}

// Competency is a named skill dimension with a rubric weight. Indicators and
// Criteria carry the rubric fragment passed verbatim to the grader prompt.
type Competency struct {
	Name       string          `json:"name"`
	Weight     float64         `json:"weight"`
	Indicators []string        `json:"indicators,omitempty"`
	Criteria   json.RawMessage `json:"criteria,omitempty"`
}

// RubricFragment serializes the competency as a standalone JSON fragment for
// grading prompts.
func (c *Competency) RubricFragment() string {
	data, err := json.Marshal(c)
	if err != nil {
		return c.Name
	}
	return string(data)
}

// QuestionOutput is the structured response expected from the question
// generation chain.
type QuestionOutput struct {
	Question   string `json:"question" validate:"required"`
	Difficulty string `json:"difficulty" validate:"required,oneof=L1 L2 L3 L4"`
	Competency string `json:"competency"`
	Rationale  string `json:"rationale" validate:"max=60"`
}

// Validate validates the QuestionOutput using the validator.
func (q *QuestionOutput) Validate() error {
	validate := validator.New()
	return validate.Struct(q)
}

// GradeOutput is the structured response expected from the grading chain.
type GradeOutput struct {
	Score            float64 `json:"score"`
	Justification    string  `json:"justification" validate:"max=250"`
	FollowupQuestion string  `json:"followup_question" validate:"required"`
}

// Validate validates the GradeOutput using the validator.
func (g *GradeOutput) Validate() error {
	validate := validator.New()
	return validate.Struct(g)
}

// Clamp forces the score into [0,1] and coerces the follow-up to end with '?'.
// Models occasionally return scores outside the documented range; the record
// format guarantees the bound, so the engine enforces it here.
func (g *GradeOutput) Clamp() {
	if g.Score < 0 {
		g.Score = 0
	}
	if g.Score > 1 {
		g.Score = 1
	}
	g.Justification = strings.TrimSpace(g.Justification)
	g.FollowupQuestion = strings.TrimSpace(g.FollowupQuestion)
	if g.FollowupQuestion != "" && !strings.HasSuffix(g.FollowupQuestion, "?") {
		g.FollowupQuestion += "?"
	}
}

// RewrittenQuestion is the structured response expected from the follow-up
// rewrite chain.
type RewrittenQuestion struct {
	Question string `json:"question" validate:"required"`
}

// EvalRecord is one persisted interview round. Records are append-only and
// never mutated after write.
type EvalRecord struct {
	SessionID        string    `json:"session_id,omitempty"`
	Round            int       `json:"round"`
	Competency       string    `json:"competency"`
	Question         string    `json:"question"`
	Answer           string    `json:"answer"`
	Score            float64   `json:"score"`
	Band             Band      `json:"band"`
	Justification    string    `json:"justification"`
	FollowupQuestion string    `json:"followup_question"`
	Timestamp        time.Time `json:"timestamp"`
}
