package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionOutputValidate(t *testing.T) {
	tests := []struct {
		name    string
		output  QuestionOutput
		wantErr bool
	}{
		{
			name: "valid output",
			output: QuestionOutput{
				Question:   "What are the trade-offs of eager loading?",
				Difficulty: "L2",
				Competency: "Databases",
				Rationale:  "Probes ORM fundamentals",
			},
			wantErr: false,
		},
		{
			name: "missing question",
			output: QuestionOutput{
				Difficulty: "L2",
			},
			wantErr: true,
		},
		{
			name: "invalid difficulty",
			output: QuestionOutput{
				Question:   "What is a goroutine?",
				Difficulty: "L5",
			},
			wantErr: true,
		},
		{
			name: "rationale too long",
			output: QuestionOutput{
				Question:   "What is a goroutine?",
				Difficulty: "L1",
				Rationale:  "This rationale is far too long to fit within the sixty character limit imposed on it",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.output.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGradeOutputClamp(t *testing.T) {
	tests := []struct {
		name         string
		score        float64
		wantScore    float64
		followup     string
		wantFollowup string
	}{
		{"negative score", -0.3, 0.0, "Why?", "Why?"},
		{"score above one", 1.7, 1.0, "Why?", "Why?"},
		{"in range untouched", 0.62, 0.62, "Why?", "Why?"},
		{"missing question mark appended", 0.5, 0.5, "Explain caching", "Explain caching?"},
		{"whitespace trimmed", 0.5, 0.5, "  Why?  ", "Why?"},
		{"empty followup left empty", 0.5, 0.5, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := GradeOutput{Score: tt.score, FollowupQuestion: tt.followup}
			g.Clamp()
			assert.InDelta(t, tt.wantScore, g.Score, 1e-9)
			assert.Equal(t, tt.wantFollowup, g.FollowupQuestion)
		})
	}
}

func TestCompetencyRubricFragment(t *testing.T) {
	comp := Competency{
		Name:       "Kubernetes",
		Weight:     0.9,
		Indicators: []string{"explains pod lifecycle", "knows service discovery"},
	}

	fragment := comp.RubricFragment()

	var decoded Competency
	require.NoError(t, json.Unmarshal([]byte(fragment), &decoded))
	assert.Equal(t, "Kubernetes", decoded.Name)
	assert.InDelta(t, 0.9, decoded.Weight, 1e-9)
	assert.Len(t, decoded.Indicators, 2)
}

func TestSampleRoundTrip(t *testing.T) {
	line := `{"jd":"Backend engineer, Go and Kubernetes.","resume":"5 years Go.","rubric":{"competencies":[{"name":"Go","weight":0.8},{"name":"Kubernetes","weight":0.6}]}}`

	var sample Sample
	require.NoError(t, json.Unmarshal([]byte(line), &sample))
	assert.Equal(t, "Backend engineer, Go and Kubernetes.", sample.JD)
	require.Len(t, sample.Rubric.Competencies, 2)
	assert.Equal(t, "Go", sample.Rubric.Competencies[0].Name)
}
