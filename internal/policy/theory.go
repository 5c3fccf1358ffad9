// Package policy enforces the theory-only content policy for interview
// questions. A compliant question asks about concepts, semantics, trade-offs,
// or best practices; it never asks the candidate to produce code.
package policy

import (
	"regexp"
	"strings"
)

// Rejection reasons returned by IsTheoryQuestion. The first failing check wins.
const (
	ReasonEmpty         = "Empty question"
	ReasonNoQuestion    = "Must end with '?'"
	ReasonTooLong       = "Too long (>15 words)"
	ReasonAsksForCode   = "Asks for code/implementation"
	ReasonCodeSnippet   = "Requests code/snippet"
	ReasonLooksLikeCode = "Looks like code"
	ReasonMultiQuestion = "Multiple questions"
	ReasonMultiPart     = "Likely multi-part"
)

// maxQuestionWords caps question length in whitespace-delimited tokens.
const maxQuestionWords = 15

var (
	// Imperative verbs that, combined with code-ish tokens, signal an
	// implementation request.
	impVerbsRe = regexp.MustCompile(`(?i)\b(write|implement|code|create|build|design|develop|draft|show|provide|give)\b`)

	// Explicit requests for code artifacts.
	snippetRe = regexp.MustCompile(`(?i)(write|provide|show|paste).*(code|snippet|function)`)

	// Tokens that make a string look like code rather than prose: fences,
	// language keywords, markup, console calls, trailing statement syntax.
	codeTokensRe = regexp.MustCompile("(?i)```|\\b(def|class|import)\\b|<code>|console\\.log|;\\s*$|\\{\\s*\\}|\\(|\\)\\s*:\\s*$")

	// Coordinating conjunctions hint at multi-part questions.
	joinersRe = regexp.MustCompile(`(?i)\b(and|or)\b`)

	// Comparative "between X and Y" phrasing is a single claim; its "and" is
	// exempt from the multi-part heuristic.
	betweenRe = regexp.MustCompile(`(?i)\bbetween\b[^?]*?\band\b`)
)

// IsTheoryQuestion reports whether a candidate question satisfies the
// theory-only policy. On rejection the second return value names the first
// check that failed; on acceptance it is empty.
func IsTheoryQuestion(q string) (bool, string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return false, ReasonEmpty
	}

	if !strings.HasSuffix(q, "?") {
		return false, ReasonNoQuestion
	}

	if len(strings.Fields(q)) > maxQuestionWords {
		return false, ReasonTooLong
	}

	lower := strings.ToLower(q)
	if impVerbsRe.MatchString(q) && (strings.Contains(lower, "code") || strings.Contains(lower, "implement")) {
		return false, ReasonAsksForCode
	}

	if snippetRe.MatchString(q) {
		return false, ReasonCodeSnippet
	}

	if codeTokensRe.MatchString(q) {
		return false, ReasonLooksLikeCode
	}

	if strings.Count(q, "?") > 1 {
		return false, ReasonMultiQuestion
	}

	if joinersRe.MatchString(stripComparatives(q)) {
		return false, ReasonMultiPart
	}

	return true, ""
}

// stripComparatives removes "between X and Y" spans so their conjunction does
// not trip the multi-part heuristic.
func stripComparatives(q string) string {
	return betweenRe.ReplaceAllString(q, "")
}
