package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interview-agent/internal/types"
)

// DefaultTTL is how long an idle session survives before the sweeper drops it.
const DefaultTTL = 2 * time.Hour

// Registry owns the live sessions. Sessions live only in memory; a restart
// loses them, but their graded rounds are already in the record sink.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewRegistry creates a registry. A non-positive ttl falls back to DefaultTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create registers a new session in the created state and returns it. An
// empty mode defaults to practice.
func (r *Registry) Create(sample *types.Sample, comp *types.Competency, rounds int, mode string) *Session {
	if mode == "" {
		mode = ModePractice
	}
	id := newSessionID()
	s := newSession(id, sample, comp, rounds, mode)

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	return s
}

// Get returns the session for an ID.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, &SessionNotFoundError{ID: id}
	}
	return s, nil
}

// Delete removes a session. Removing an unknown ID is an error so callers can
// distinguish a double delete from a successful one.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return &SessionNotFoundError{ID: id}
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle past the TTL and returns how many were removed.
func (r *Registry) Sweep() int {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.expired(r.ttl, now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the given interval until the context is done.
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Sweep(); n > 0 {
					log.Printf("[SESSION] swept %d expired session(s)", n)
				}
			}
		}
	}()
}

// newSessionID builds a sortable, human-scannable session ID. The timestamp
// prefix groups sessions by start time in logs; the UUID suffix keeps IDs
// unique within a second.
func newSessionID() string {
	return fmt.Sprintf("session_%s_%s",
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8])
}
