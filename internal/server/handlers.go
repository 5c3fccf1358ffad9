package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/interview-agent/internal/rubric"
	"github.com/jonathan/interview-agent/internal/scoring"
	"github.com/jonathan/interview-agent/internal/session"
	"github.com/jonathan/interview-agent/internal/types"
)

// startRequest begins a new interview session.
type startRequest struct {
	SampleIndex int    `json:"sample_index"`
	Competency  string `json:"competency,omitempty"`
	Rounds      int    `json:"rounds,omitempty"`
	Mode        string `json:"mode,omitempty"`
}

type startResponse struct {
	SessionID   string `json:"session_id"`
	State       string `json:"state"`
	Mode        string `json:"mode"`
	Round       int    `json:"round"`
	TotalRounds int    `json:"total_rounds"`
	Competency  string `json:"competency"`
	Question    string `json:"question"`
	Difficulty  string `json:"difficulty"`
}

// answerRequest submits the candidate's answer for the current round.
type answerRequest struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type answerResponse struct {
	SessionID        string     `json:"session_id"`
	Round            int        `json:"round"`
	TotalRounds      int        `json:"total_rounds"`
	Score            float64    `json:"score"`
	Band             types.Band `json:"band"`
	Justification    string     `json:"justification"`
	FollowupQuestion string     `json:"followup_question"`
	NextQuestion     string     `json:"next_question,omitempty"`
	NextRound        int        `json:"next_round,omitempty"`
	IsComplete       bool       `json:"is_complete"`
	State            string     `json:"state"`
}

type feedbackResponse struct {
	SessionID      string             `json:"session_id"`
	Competency     string             `json:"competency"`
	Mode           string             `json:"mode"`
	TotalQuestions int                `json:"total_questions"`
	AverageScore   float64            `json:"average_score"`
	AverageBand    types.Band         `json:"average_band"`
	CreatedAt      time.Time          `json:"created_at"`
	CompletedAt    time.Time          `json:"completed_at"`
	Records        []types.EvalRecord `json:"records"`
}

// historySummary is one session's aggregate in the history listing.
type historySummary struct {
	SessionID         string     `json:"session_id"`
	Competency        string     `json:"competency"`
	QuestionsAnswered int        `json:"questions_answered"`
	AverageScore      float64    `json:"average_score"`
	AverageBand       types.Band `json:"average_band"`
	Timestamp         time.Time  `json:"timestamp"`
}

type historyResponse struct {
	Count    int              `json:"count"`
	Sessions []historySummary `json:"sessions"`
}

// handleStart loads a sample, picks the competency, generates the opening
// question and activates a fresh session.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sample, err := rubric.LoadSample(s.cfg.Dataset, req.SampleIndex)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	comp, err := rubric.SelectCompetency(&sample.Rubric, req.Competency)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	rounds := req.Rounds
	if rounds <= 0 {
		rounds = s.cfg.Rounds
	}

	mode := req.Mode
	if mode == "" {
		mode = session.ModePractice
	}
	if !session.ValidMode(mode) {
		err := &ErrValidation{Field: "mode", Message: "must be practice or official"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	question, err := s.chains.GenerateQuestion(r.Context(), sample, comp)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "question generation failed")
		return
	}

	sess := s.registry.Create(sample, comp, rounds, mode)
	if err := sess.Begin(question.Question); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	log.Printf("[SESSION] %s started: competency=%q rounds=%d mode=%s", sess.ID, comp.Name, rounds, mode)
	s.jsonResponse(w, http.StatusCreated, startResponse{
		SessionID:   sess.ID,
		State:       string(sess.State()),
		Mode:        sess.Mode,
		Round:       sess.CurrentRound(),
		TotalRounds: rounds,
		Competency:  comp.Name,
		Question:    question.Question,
		Difficulty:  question.Difficulty,
	})
}

// handleAnswer grades the current round, persists the record and either
// advances to the next round or completes the session.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		err := &ErrValidation{Field: "session_id", Message: "is required"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if strings.TrimSpace(req.Answer) == "" {
		err := &ErrValidation{Field: "answer", Message: "must not be empty"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sess, err := s.registry.Get(req.SessionID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if err := sess.Acquire(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	defer sess.Release()

	if sess.State() != session.StateActive {
		err := &session.InvalidStateError{ID: sess.ID, State: sess.State(), Operation: "submit an answer"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	round := sess.CurrentRound()
	question := sess.CurrentQuestion()

	grade, err := s.chains.GradeAnswer(r.Context(), sess.Competency, question, req.Answer)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "grading failed")
		return
	}

	followup, err := s.chains.RewriteFollowup(r.Context(), grade.FollowupQuestion)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "follow-up rewrite failed")
		return
	}

	rec := types.EvalRecord{
		SessionID:        sess.ID,
		Round:            round,
		Competency:       sess.Competency.Name,
		Question:         question,
		Answer:           req.Answer,
		Score:            grade.Score,
		Band:             s.cfg.Thresholds.BandFromScore(grade.Score),
		Justification:    grade.Justification,
		FollowupQuestion: followup,
		Timestamp:        time.Now().UTC(),
	}

	// Persist before advancing so a sink failure never leaves an unrecorded
	// round behind.
	if err := s.writer.Append(&rec); err != nil {
		log.Printf("[SINK] append failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to persist record")
		return
	}

	// The rewritten follow-up becomes the next round's question.
	done, err := sess.RecordAnswer(rec, followup)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	resp := answerResponse{
		SessionID:        sess.ID,
		Round:            round,
		TotalRounds:      sess.TotalRounds,
		Score:            rec.Score,
		Band:             rec.Band,
		Justification:    rec.Justification,
		FollowupQuestion: followup,
		IsComplete:       done,
		State:            string(sess.State()),
	}
	if !done {
		resp.NextQuestion = followup
		resp.NextRound = sess.CurrentRound()
	}

	log.Printf("[SESSION] %s round %d graded: score=%.2f band=%s complete=%t",
		sess.ID, round, rec.Score, rec.Band, done)
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleFeedback aggregates the session's rounds into overall feedback once
// the interview has completed.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	sess, err := s.registry.Get(r.PathValue("session_id"))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	records, err := sess.Feedback()
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	scores := make([]float64, len(records))
	for i, rec := range records {
		scores[i] = rec.Score
	}
	mean := scoring.Mean(scores)

	s.jsonResponse(w, http.StatusOK, feedbackResponse{
		SessionID:      sess.ID,
		Competency:     sess.Competency.Name,
		Mode:           sess.Mode,
		TotalQuestions: sess.TotalRounds,
		AverageScore:   mean,
		AverageBand:    s.cfg.Thresholds.BandFromScore(mean),
		CreatedAt:      sess.CreatedAt(),
		CompletedAt:    sess.CompletedAt(),
		Records:        records,
	})
}

// handleHistory returns one aggregate summary per recorded session, most
// recently active first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	sums, err := s.reader.SessionSummaries(limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to read history")
		return
	}

	sessions := make([]historySummary, len(sums))
	for i, sum := range sums {
		sessions[i] = historySummary{
			SessionID:         sum.SessionID,
			Competency:        sum.Competency,
			QuestionsAnswered: sum.QuestionsAnswered,
			AverageScore:      sum.AverageScore,
			AverageBand:       s.cfg.Thresholds.BandFromScore(sum.AverageScore),
			Timestamp:         sum.Timestamp,
		}
	}

	s.jsonResponse(w, http.StatusOK, historyResponse{
		Count:    len(sessions),
		Sessions: sessions,
	})
}

// handleDeleteSession drops a live session. Persisted records survive.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("session_id")
	if err := s.registry.Delete(id); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	log.Printf("[SESSION] %s deleted", id)
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":     "deleted",
		"session_id": id,
	})
}
