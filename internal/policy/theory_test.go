package policy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTheoryQuestion(t *testing.T) {
	tests := []struct {
		name       string
		question   string
		wantValid  bool
		wantReason string
	}{
		{
			name:      "minimal compliant example",
			question:  "What are the trade-offs between eager and lazy loading?",
			wantValid: true,
		},
		{
			name:      "single concept question",
			question:  "What does connection pooling optimize?",
			wantValid: true,
		},
		{
			name:      "comparison with vs",
			question:  "How do you evaluate REST vs gRPC for internal services?",
			wantValid: true,
		},
		{
			name:       "empty string",
			question:   "",
			wantValid:  false,
			wantReason: ReasonEmpty,
		},
		{
			name:       "whitespace only",
			question:   "   \t  ",
			wantValid:  false,
			wantReason: ReasonEmpty,
		},
		{
			name:       "missing question mark",
			question:   "Explain the CAP theorem",
			wantValid:  false,
			wantReason: ReasonNoQuestion,
		},
		{
			name:       "too many words",
			question:   "What is the difference in memory usage characteristics of arrays versus linked lists when storing many small items?",
			wantValid:  false,
			wantReason: ReasonTooLong,
		},
		{
			name:       "asks to write code",
			question:   "Can you write code to reverse a linked list?",
			wantValid:  false,
			wantReason: ReasonAsksForCode,
		},
		{
			name:       "asks to implement",
			question:   "Could you implement a rate limiter for me?",
			wantValid:  false,
			wantReason: ReasonAsksForCode,
		},
		{
			name:       "requests a snippet",
			question:   "Please show a snippet demonstrating memoization?",
			wantValid:  false,
			wantReason: ReasonCodeSnippet,
		},
		{
			name:       "contains a code fence",
			question:   "What does ```def foo()``` do?",
			wantValid:  false,
			wantReason: ReasonLooksLikeCode,
		},
		{
			name:       "contains console.log",
			question:   "Why is console.log slow?",
			wantValid:  false,
			wantReason: ReasonLooksLikeCode,
		},
		{
			name:       "contains parentheses",
			question:   "What does malloc(0) return?",
			wantValid:  false,
			wantReason: ReasonLooksLikeCode,
		},
		{
			name:       "multiple question marks",
			question:   "What is sharding? How does it scale?",
			wantValid:  false,
			wantReason: ReasonMultiQuestion,
		},
		{
			name:       "multi-part with and",
			question:   "What is caching and why is it useful?",
			wantValid:  false,
			wantReason: ReasonMultiPart,
		},
		{
			name:       "multi-part with or",
			question:   "Would you choose Redis or Memcached here?",
			wantValid:  false,
			wantReason: ReasonMultiPart,
		},
		{
			name:       "between comparative plus extra or still rejected",
			question:   "Do you prefer the choice between speed and safety or neither?",
			wantValid:  false,
			wantReason: ReasonMultiPart,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, reason := IsTheoryQuestion(tt.question)
			assert.Equal(t, tt.wantValid, valid)
			if tt.wantValid {
				assert.Empty(t, reason)
			} else {
				assert.Equal(t, tt.wantReason, reason)
			}
		})
	}
}

func TestIsTheoryQuestion_FenceAlwaysRejected(t *testing.T) {
	// Any code fence is rejected regardless of the rest of the string.
	valid, _ := IsTheoryQuestion("```?")
	assert.False(t, valid)
}

func TestIsTheoryQuestion_LengthBoundary(t *testing.T) {
	// Exactly 15 words is allowed; 16 is not.
	fifteen := strings.Repeat("word ", 14) + "ok?"
	valid, _ := IsTheoryQuestion(fifteen)
	assert.True(t, valid)

	sixteen := strings.Repeat("word ", 15) + "ok?"
	valid, reason := IsTheoryQuestion(sixteen)
	assert.False(t, valid)
	assert.Equal(t, ReasonTooLong, reason)
}
