// Package sink persists graded interview rounds as append-only JSONL. One
// line per round; a record is written only after grading and follow-up
// rewriting both finished, so partial rounds never reach disk.
package sink

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jonathan/interview-agent/internal/types"
)

// DefaultPath is where rounds land unless configured otherwise.
const DefaultPath = "eval_records.jsonl"

// WriteError wraps a failed append with the sink path.
type WriteError struct {
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to append record to %s: %v", e.Path, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

// Writer appends records to a JSONL file. Safe for concurrent use; the mutex
// keeps lines from different sessions intact, though their order interleaves.
type Writer struct {
	mu   sync.Mutex
	path string
}

// NewWriter creates a writer for the given path. An empty path uses
// DefaultPath.
func NewWriter(path string) *Writer {
	if path == "" {
		path = DefaultPath
	}
	return &Writer{path: path}
}

// Path returns the sink file path.
func (w *Writer) Path() string {
	return w.path
}

// Append writes one record as a single JSON line, creating the parent
// directory and file as needed.
func (w *Writer) Append(rec *types.EvalRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return &WriteError{Path: w.path, Cause: err}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &WriteError{Path: w.path, Cause: err}
		}
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &WriteError{Path: w.path, Cause: err}
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return &WriteError{Path: w.path, Cause: err}
	}
	return nil
}

// Reader scans a JSONL record file. Unparseable and blank lines are skipped,
// so a partially corrupted file still yields its good records.
type Reader struct {
	path string
}

// NewReader creates a reader for the given path.
func NewReader(path string) *Reader {
	if path == "" {
		path = DefaultPath
	}
	return &Reader{path: path}
}

// SessionRecords returns all records for one session in file (chronological)
// order. A missing file means no records, not an error.
func (r *Reader) SessionRecords(sessionID string) ([]types.EvalRecord, error) {
	var out []types.EvalRecord
	err := r.scan(func(rec types.EvalRecord) {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	})
	return out, err
}

// SessionSummary aggregates one session's recorded rounds.
type SessionSummary struct {
	SessionID         string    `json:"session_id"`
	Competency        string    `json:"competency"`
	QuestionsAnswered int       `json:"questions_answered"`
	AverageScore      float64   `json:"average_score"`
	Timestamp         time.Time `json:"timestamp"`
}

// SessionSummaries aggregates the record file into one summary per session,
// most recently active session first. A limit of zero or less returns every
// session.
func (r *Reader) SessionSummaries(limit int) ([]SessionSummary, error) {
	totals := make(map[string]*SessionSummary)
	sums := make(map[string]float64)

	if err := r.scan(func(rec types.EvalRecord) {
		sum, ok := totals[rec.SessionID]
		if !ok {
			sum = &SessionSummary{SessionID: rec.SessionID}
			totals[rec.SessionID] = sum
		}
		sum.Competency = rec.Competency
		sum.QuestionsAnswered++
		sums[rec.SessionID] += rec.Score
		if rec.Timestamp.After(sum.Timestamp) {
			sum.Timestamp = rec.Timestamp
		}
	}); err != nil {
		return nil, err
	}

	out := make([]SessionSummary, 0, len(totals))
	for id, sum := range totals {
		sum.AverageScore = sums[id] / float64(sum.QuestionsAnswered)
		out = append(out, *sum)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].SessionID > out[j].SessionID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Reader) scan(visit func(types.EvalRecord)) error {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec types.EvalRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		visit(rec)
	}
	return scanner.Err()
}
