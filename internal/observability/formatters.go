// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/interview-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxIndicatorsToShow is the number of rubric indicators displayed
	maxIndicatorsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSample shows the loaded sample and the selected competency.
func (p *Printer) PrintSample(sample *types.Sample, comp *types.Competency) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("JD: %s\n", firstLine(sample.JD)))
	sb.WriteString(fmt.Sprintf("Resume: %s\n", firstLine(sample.Resume)))
	sb.WriteString(fmt.Sprintf("Competencies: %d\n", len(sample.Rubric.Competencies)))
	sb.WriteString(fmt.Sprintf("Selected: %s (weight %.2f)", comp.Name, comp.Weight))

	shown := comp.Indicators
	if len(shown) > maxIndicatorsToShow {
		shown = shown[:maxIndicatorsToShow]
	}
	for _, ind := range shown {
		sb.WriteString(fmt.Sprintf("\n  - %s", ind))
	}
	if len(comp.Indicators) > maxIndicatorsToShow {
		sb.WriteString(fmt.Sprintf("\n  ... and %d more", len(comp.Indicators)-maxIndicatorsToShow))
	}

	p.printBox("Sample", sb.String())
}

// PrintQuestion shows a generated question with its difficulty and rationale.
func (p *Printer) PrintQuestion(q *types.QuestionOutput) {
	content := fmt.Sprintf("%s\nDifficulty: %s", q.Question, q.Difficulty)
	if q.Rationale != "" {
		content += fmt.Sprintf("\nRationale: %s", q.Rationale)
	}
	p.printBox("Question", content)
}

// PrintRound shows one graded round.
func (p *Printer) PrintRound(rec *types.EvalRecord) {
	content := fmt.Sprintf("Score: %.2f (%s)\n%s\nFollow-up: %s",
		rec.Score, rec.Band, rec.Justification, rec.FollowupQuestion)
	p.printBox(fmt.Sprintf("Round %d", rec.Round), content)
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
