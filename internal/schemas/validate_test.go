package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBytes_QuestionOutput(t *testing.T) {
	tests := []struct {
		name     string
		document string
		wantErr  bool
	}{
		{
			name:     "valid question",
			document: `{"question": "What is a deadlock?", "difficulty": "L2", "competency": "Concurrency", "rationale": "Core concept"}`,
			wantErr:  false,
		},
		{
			name:     "missing difficulty",
			document: `{"question": "What is a deadlock?"}`,
			wantErr:  true,
		},
		{
			name:     "invalid difficulty level",
			document: `{"question": "What is a deadlock?", "difficulty": "hard"}`,
			wantErr:  true,
		},
		{
			name:     "empty question",
			document: `{"question": "", "difficulty": "L1"}`,
			wantErr:  true,
		},
		{
			name:     "not JSON at all",
			document: `I refuse to answer in JSON`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBytes(QuestionOutput, []byte(tt.document))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBytes_GradeOutput(t *testing.T) {
	valid := `{"score": 0.8, "justification": "Covers replication and mentions quorum reads.", "followup_question": "How does quorum size affect latency?"}`
	assert.NoError(t, ValidateBytes(GradeOutput, []byte(valid)))

	// Out-of-range scores are structurally valid; clamping happens downstream.
	outOfRange := `{"score": 1.7, "justification": "x", "followup_question": "Why?"}`
	assert.NoError(t, ValidateBytes(GradeOutput, []byte(outOfRange)))

	missing := `{"score": 0.8}`
	err := ValidateBytes(GradeOutput, []byte(missing))
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, GradeOutput, ve.Schema)
	assert.NotEmpty(t, ve.Errors)
}

func TestValidateBytes_RewrittenQuestion(t *testing.T) {
	assert.NoError(t, ValidateBytes(RewrittenQuestion, []byte(`{"question": "What is eventual consistency?"}`)))
	assert.Error(t, ValidateBytes(RewrittenQuestion, []byte(`{"text": "wrong field"}`)))
}

func TestValidateBytes_UnknownSchema(t *testing.T) {
	err := ValidateBytes("missing.json", []byte(`{}`))
	require.Error(t, err)

	var le *SchemaLoadError
	assert.ErrorAs(t, err, &le)
}
