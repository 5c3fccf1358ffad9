package chains

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient returns scripted responses in order. An entry in errs at the same
// index takes precedence over the response.
type fakeClient struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     []fakeCall
}

type fakeCall struct {
	system string
	user   string
	role   llm.TaskRole
}

func (f *fakeClient) GenerateJSON(_ context.Context, system, user string, role llm.TaskRole) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.calls)
	f.calls = append(f.calls, fakeCall{system: system, user: user, role: role})
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

func (f *fakeClient) Model() string { return "fake-model" }
func (f *fakeClient) Close() error  { return nil }

func testSample() *types.Sample {
	return &types.Sample{
		JD:     "Backend engineer building high-throughput APIs.",
		Resume: "Five years of Go services experience.",
	}
}

func testCompetency() *types.Competency {
	return &types.Competency{Name: "System Design", Weight: 0.5}
}

func TestGenerateQuestion_FirstAttempt(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"question": "What are the trade-offs between eager and lazy loading?", "difficulty": "L2", "competency": "Something Else", "rationale": "probes caching"}`,
	}}
	m := NewManager(client)

	out, err := m.GenerateQuestion(context.Background(), testSample(), testCompetency())
	require.NoError(t, err)
	assert.Equal(t, "What are the trade-offs between eager and lazy loading?", out.Question)
	assert.Equal(t, "L2", out.Difficulty)
	// The requested competency is authoritative regardless of what the model
	// puts in the field.
	assert.Equal(t, "System Design", out.Competency)
	assert.Len(t, client.calls, 1)
	assert.Equal(t, llm.RoleQuestion, client.calls[0].role)
	assert.Contains(t, client.calls[0].user, "System Design")
}

func TestGenerateQuestion_RetriesWithFeedback(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"question": "Explain the CAP theorem", "difficulty": "L2", "rationale": "no mark"}`,
		`{"question": "What does the CAP theorem constrain?", "difficulty": "L3", "rationale": "ok"}`,
	}}
	m := NewManager(client)

	out, err := m.GenerateQuestion(context.Background(), testSample(), testCompetency())
	require.NoError(t, err)
	assert.Equal(t, "What does the CAP theorem constrain?", out.Question)
	require.Len(t, client.calls, 2)
	// The retry prompt names the violation and the rejected question.
	assert.Contains(t, client.calls[1].user, "Must end with '?'")
	assert.Contains(t, client.calls[1].user, "Explain the CAP theorem")
}

func TestGenerateQuestion_FeedbackAccumulates(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"question": "Explain the CAP theorem", "difficulty": "L2", "rationale": "no mark"}`,
		`{"question": "What is sharding? How does it scale?", "difficulty": "L2", "rationale": "two questions"}`,
		`{"question": "What does the CAP theorem constrain?", "difficulty": "L3", "rationale": "ok"}`,
	}}
	m := NewManager(client)

	out, err := m.GenerateQuestion(context.Background(), testSample(), testCompetency())
	require.NoError(t, err)
	assert.Equal(t, "What does the CAP theorem constrain?", out.Question)
	require.Len(t, client.calls, 3)

	// The third prompt carries both earlier rejections, not just the latest.
	last := client.calls[2].user
	assert.Contains(t, last, "Must end with '?'")
	assert.Contains(t, last, "Explain the CAP theorem")
	assert.Contains(t, last, "What is sharding? How does it scale?")
}

func TestGenerateQuestion_FallbackAfterRetryBudget(t *testing.T) {
	client := &fakeClient{responses: []string{
		`not json at all`,
		`{"question": "What is sharding? How does it scale?", "difficulty": "L2", "rationale": "two questions"}`,
		`{"question": "Can you write code to reverse a list?", "difficulty": "L2", "rationale": "code ask"}`,
	}}
	m := NewManager(client)

	out, err := m.GenerateQuestion(context.Background(), testSample(), testCompetency())
	require.NoError(t, err)
	assert.Equal(t, "What are the key considerations for System Design?", out.Question)
	assert.Equal(t, "L2", out.Difficulty)
	assert.Equal(t, "System Design", out.Competency)
	assert.Equal(t, fallbackRationale, out.Rationale)
	assert.Len(t, client.calls, 3)
}

func TestGenerateQuestion_TruncatesContext(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	sample := &types.Sample{JD: string(long), Resume: string(long)}
	client := &fakeClient{responses: []string{
		`{"question": "What does connection pooling optimize?", "difficulty": "L1", "rationale": "basics"}`,
	}}
	m := NewManager(client)

	_, err := m.GenerateQuestion(context.Background(), sample, testCompetency())
	require.NoError(t, err)
	require.Len(t, client.calls, 1)
	// Prompt carries at most the truncated JD + resume, not the full 4000 chars.
	assert.Less(t, len(client.calls[0].user), 2200)
}

func TestGradeAnswer_ClampsScoreAndFollowup(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"score": 1.4, "justification": "Strong answer covering the indicators.", "followup_question": "How would you shard hot keys"}`,
	}}
	m := NewManager(client)

	out, err := m.GradeAnswer(context.Background(), testCompetency(), "How does sharding scale writes?", "By splitting keyspace across nodes.")
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.Score)
	assert.Equal(t, "How would you shard hot keys?", out.FollowupQuestion)
	require.Len(t, client.calls, 1)
	assert.Equal(t, llm.RoleGrader, client.calls[0].role)
	// The rubric fragment rides along in the prompt.
	assert.Contains(t, client.calls[0].user, "System Design")
}

func TestGradeAnswer_FallbackOnGarbage(t *testing.T) {
	client := &fakeClient{responses: []string{`the model rambled instead of emitting JSON`}}
	m := NewManager(client)

	out, err := m.GradeAnswer(context.Background(), testCompetency(), "Q?", "A")
	require.NoError(t, err)
	assert.Equal(t, 0.5, out.Score)
	assert.Equal(t, fallbackJustification, out.Justification)
	assert.Equal(t, fallbackFollowup, out.FollowupQuestion)
}

func TestGradeAnswer_FallbackOnTransportError(t *testing.T) {
	client := &fakeClient{errs: []error{errors.New("rate limited")}}
	m := NewManager(client)

	out, err := m.GradeAnswer(context.Background(), testCompetency(), "Q?", "A")
	require.NoError(t, err)
	assert.Equal(t, 0.5, out.Score)
}

func TestRewriteFollowup_CompliantPassThrough(t *testing.T) {
	client := &fakeClient{}
	m := NewManager(client)

	q := "What does the CAP theorem constrain?"
	got, err := m.RewriteFollowup(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, q, got)
	// No LLM call for an already-compliant question.
	assert.Empty(t, client.calls)
}

func TestRewriteFollowup_RewritesNonCompliant(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"question": "What does memoization trade memory for?"}`,
	}}
	m := NewManager(client)

	got, err := m.RewriteFollowup(context.Background(), "Can you write code demonstrating memoization?")
	require.NoError(t, err)
	assert.Equal(t, "What does memoization trade memory for?", got)
	require.Len(t, client.calls, 1)
	assert.Equal(t, llm.RoleRewrite, client.calls[0].role)
}

func TestRewriteFollowup_FallbackWhenRewriteStillBad(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"question": "Please implement the code for memoization?"}`,
	}}
	m := NewManager(client)

	got, err := m.RewriteFollowup(context.Background(), "Can you write code demonstrating memoization?")
	require.NoError(t, err)
	assert.Equal(t, fallbackRewrite, got)
}

func TestJSONInvoker_RepairsTrailingCommas(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"question": "What does GC pressure affect?", "difficulty": "L2", "rationale": "gc",}`,
	}}

	var out types.QuestionOutput
	err := JSONInvoker{}.Invoke(context.Background(), client, "sys", "user", llm.RoleQuestion, &out)
	require.NoError(t, err)
	assert.Equal(t, "What does GC pressure affect?", out.Question)
}

func TestSchemaInvoker_RejectsMissingFields(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"justification": "no score or followup"}`,
	}}

	var out types.GradeOutput
	err := SchemaInvoker{}.Invoke(context.Background(), client, "sys", "user", llm.RoleGrader, &out)
	require.Error(t, err)

	var chainErr *ChainError
	assert.ErrorAs(t, err, &chainErr)
}

func TestGenerateQuestion_ContextCancelled(t *testing.T) {
	client := &fakeClient{errs: []error{context.Canceled}}
	m := NewManager(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.GenerateQuestion(ctx, testSample(), testCompetency())
	assert.ErrorIs(t, err, context.Canceled)
}
