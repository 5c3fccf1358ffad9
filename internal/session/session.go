// Package session holds the in-memory interview session state machine and the
// registry that owns live sessions. Persistence of finished rounds is the
// record sink's job; a session only tracks what the next request needs.
package session

import (
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jonathan/interview-agent/internal/types"
)

// State is the lifecycle phase of a session.
type State string

// Session lifecycle: created on registration, active once the opening
// question is issued, completed after the final round is answered.
const (
	StateCreated   State = "created"
	StateActive    State = "active"
	StateCompleted State = "completed"
)

// Interview modes. Practice runs carry no stakes; official runs are the ones
// a reviewer would look at. Both behave identically in the engine, the mode
// only travels with the session and its responses.
const (
	ModePractice = "practice"
	ModeOfficial = "official"
)

// ValidMode reports whether m names a known interview mode.
func ValidMode(m string) bool {
	return m == ModePractice || m == ModeOfficial
}

// Session is one live mock interview. All mutating methods require the
// in-flight slot (Acquire) to be held, which serializes concurrent requests
// against the same session.
type Session struct {
	ID          string
	Sample      *types.Sample
	Competency  *types.Competency
	TotalRounds int
	Mode        string

	mu              sync.Mutex
	state           State
	currentRound    int
	currentQuestion string
	records         []types.EvalRecord
	createdAt       time.Time
	completedAt     time.Time
	lastActive      time.Time

	inflight *semaphore.Weighted
}

func newSession(id string, sample *types.Sample, comp *types.Competency, rounds int, mode string) *Session {
	now := time.Now()
	return &Session{
		ID:          id,
		Sample:      sample,
		Competency:  comp,
		TotalRounds: rounds,
		Mode:        mode,
		state:       StateCreated,
		createdAt:   now,
		lastActive:  now,
		inflight:    semaphore.NewWeighted(1),
	}
}

// Acquire claims the session's single in-flight slot without blocking. A
// second request arriving while one is mid-grade gets SessionBusyError
// instead of interleaving round state.
func (s *Session) Acquire() error {
	if !s.inflight.TryAcquire(1) {
		return &SessionBusyError{ID: s.ID}
	}
	return nil
}

// Release returns the in-flight slot.
func (s *Session) Release() {
	s.inflight.Release(1)
}

// Begin transitions created -> active and installs the opening question for
// round 1.
func (s *Session) Begin(question string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCreated {
		return &InvalidStateError{ID: s.ID, State: s.state, Operation: "start"}
	}

	s.state = StateActive
	s.currentRound = 1
	s.currentQuestion = question
	s.lastActive = time.Now()
	return nil
}

// RecordAnswer appends the graded round and either advances to the next round
// with the given question or completes the session when the final round was
// just answered. It reports whether the session completed.
func (s *Session) RecordAnswer(rec types.EvalRecord, nextQuestion string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return false, &InvalidStateError{ID: s.ID, State: s.state, Operation: "submit an answer"}
	}

	s.records = append(s.records, rec)
	s.lastActive = time.Now()

	if s.currentRound >= s.TotalRounds {
		s.state = StateCompleted
		s.currentQuestion = ""
		s.completedAt = s.lastActive
		return true, nil
	}

	s.currentRound++
	s.currentQuestion = nextQuestion
	return false, nil
}

// Feedback returns the recorded rounds once the session is completed.
func (s *Session) Feedback() ([]types.EvalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCompleted {
		return nil, &NotCompletedError{ID: s.ID, State: s.state}
	}

	out := make([]types.EvalRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentRound returns the round the session is waiting on (0 before Begin).
func (s *Session) CurrentRound() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentRound
}

// CurrentQuestion returns the question the candidate should answer next.
func (s *Session) CurrentQuestion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentQuestion
}

// Records returns a copy of the graded rounds so far.
func (s *Session) Records() []types.EvalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.EvalRecord, len(s.records))
	copy(out, s.records)
	return out
}

// CreatedAt returns when the session was registered.
func (s *Session) CreatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createdAt
}

// CompletedAt returns when the final round was answered, or the zero time
// while the session is still running.
func (s *Session) CompletedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedAt
}

// LastActive returns the time of the last state change.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// expired reports whether the session has been idle longer than ttl.
func (s *Session) expired(ttl time.Duration, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive) > ttl
}
