package server

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jonathan/interview-agent/internal/scoring"
	"github.com/jonathan/interview-agent/internal/server/ratelimit"
	"github.com/jonathan/interview-agent/internal/session"
	"github.com/jonathan/interview-agent/internal/sink"
	"github.com/jonathan/interview-agent/internal/types"
)

// ChainRunner is the slice of the chain manager the handlers need. Tests
// substitute a scripted implementation.
type ChainRunner interface {
	GenerateQuestion(ctx context.Context, sample *types.Sample, comp *types.Competency) (*types.QuestionOutput, error)
	GradeAnswer(ctx context.Context, comp *types.Competency, question, answer string) (*types.GradeOutput, error)
	RewriteFollowup(ctx context.Context, followup string) (string, error)
}

// Config holds server configuration
type Config struct {
	Addr       string
	Dataset    string
	Outfile    string
	Rounds     int
	Thresholds scoring.Thresholds
	SessionTTL time.Duration
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	chains      ChainRunner
	registry    *session.Registry
	writer      *sink.Writer
	reader      *sink.Reader
	rateLimiter *ratelimit.Limiter
	cfg         Config
	sweepCancel context.CancelFunc
}

// New creates a new server instance
func New(cfg Config, chains ChainRunner) *Server {
	if !cfg.Thresholds.Valid() {
		cfg.Thresholds = scoring.DefaultThresholds()
	}

	s := &Server{
		chains:      chains,
		registry:    session.NewRegistry(cfg.SessionTTL),
		writer:      sink.NewWriter(cfg.Outfile),
		reader:      sink.NewReader(cfg.Outfile),
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
		cfg:         cfg,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/interviews/start", s.handleStart)
	mux.HandleFunc("POST /api/interviews/answer", s.handleAnswer)
	mux.HandleFunc("GET /api/interviews/{session_id}/feedback", s.handleFeedback)
	mux.HandleFunc("GET /api/interviews/history", s.handleHistory)
	mux.HandleFunc("DELETE /api/interviews/{session_id}", s.handleDeleteSession)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // grading runs several LLM calls
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for requests and blocks until SIGINT/SIGTERM.
func (s *Server) Start() error {
	sweepCtx, cancel := context.WithCancel(context.Background())
	s.sweepCancel = cancel
	s.registry.StartSweeper(sweepCtx, 5*time.Minute)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	s.sweepCancel()
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"live_sessions": s.registry.Len(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// For now this uses the IP address from RemoteAddr.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", strconv.Itoa(int(info.RetryAfter.Seconds())))
	}
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
