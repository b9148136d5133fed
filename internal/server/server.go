// Package server provides the HTTP REST API for hiring evaluation and career coaching.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/hiring-coach/internal/coaching"
	"github.com/jonathan/hiring-coach/internal/evaluation"
	"github.com/jonathan/hiring-coach/internal/interview"
	"github.com/jonathan/hiring-coach/internal/logger"
	"github.com/jonathan/hiring-coach/internal/server/middleware"
	"github.com/jonathan/hiring-coach/internal/server/ratelimit"
)

const defaultMaxUploadBytes = 10 << 20

// Services are the domain services exposed over HTTP.
type Services struct {
	Evaluation *evaluation.Service
	Coaching   *coaching.Service
	Interview  *interview.Service
}

// Config holds server configuration.
type Config struct {
	Port            int
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
	// JWT enables bearer authentication on user, session and coaching
	// routes. Nil disables it.
	JWT       *JWTService
	RateLimit *ratelimit.Config
}

// Server is the HTTP API.
type Server struct {
	svc         Services
	cfg         Config
	jwt         *JWTService
	rateLimiter *ratelimit.Limiter
	handler     http.Handler
}

// New creates a server and its routes.
func New(svc Services, cfg Config) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.RateLimit == nil {
		cfg.RateLimit = ratelimit.LoadConfig()
	}

	s := &Server{
		svc:         svc,
		cfg:         cfg,
		jwt:         cfg.JWT,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Candidate evaluation
	mux.HandleFunc("POST /candidates", s.handleCreateCandidate)
	mux.HandleFunc("GET /candidates", s.handleListCandidates)
	mux.HandleFunc("GET /candidates/{id}", s.handleGetCandidate)
	mux.HandleFunc("DELETE /candidates/{id}", s.handleDeleteCandidate)
	mux.HandleFunc("POST /candidates/{id}/resume", s.handleAttachResume)
	mux.HandleFunc("POST /candidates/{id}/interview", s.handleAttachInterview)
	mux.HandleFunc("POST /candidates/{id}/evaluate", s.handleEvaluate)
	mux.HandleFunc("POST /candidates/{id}/evaluate/stream", s.handleEvaluateStream)
	mux.HandleFunc("GET /candidates/{id}/evaluation", s.handleGetEvaluation)
	mux.HandleFunc("GET /evaluations", s.handleListEvaluations)

	// Users and auth
	mux.HandleFunc("POST /users", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	// Authenticated coaching routes
	protect := s.protect
	mux.Handle("GET /users/{id}", protect(s.handleGetUser))
	mux.Handle("POST /users/{id}/cv", protect(s.handleUploadCV))
	mux.Handle("GET /cv-analyses/{id}", protect(s.handleGetCVAnalysis))
	mux.Handle("POST /cv-analyses/{id}/recommendations", protect(s.handleRecommendations))
	mux.Handle("POST /users/{id}/job-fit", protect(s.handleJobFit))
	mux.Handle("GET /users/{id}/job-fits", protect(s.handleListJobFits))
	mux.Handle("GET /users/{id}/dashboard", protect(s.handleDashboard))

	// Practice interviews
	mux.Handle("POST /users/{id}/sessions", protect(s.handleStartSession))
	mux.Handle("GET /sessions/{id}", protect(s.handleGetSession))
	mux.Handle("POST /sessions/{id}/cancel", protect(s.handleCancelSession))
	mux.Handle("POST /sessions/{id}/rounds", protect(s.handleStartRound))
	mux.Handle("POST /sessions/{id}/rounds/{round_id}/answers", protect(s.handleSubmitAnswer))
	mux.Handle("POST /sessions/{id}/rounds/{round_id}/complete", protect(s.handleCompleteRound))
	mux.Handle("POST /sessions/{id}/follow-up", protect(s.handleFollowUp))

	s.handler = s.withRequestLogging(s.withRateLimit(s.withCORS(mux)))
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Minute, // evaluations make three collaborator calls
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", httpServer.Addr).Msg("server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		s.rateLimiter.Stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	logger.Info().Msg("server stopped")
	return err
}

// protect applies bearer authentication when it is enabled.
func (s *Server) protect(h http.HandlerFunc) http.Handler {
	if s.jwt == nil {
		return h
	}
	return middleware.AuthMiddleware(s.jwt.AsTokenValidator())(h)
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their per-endpoint budget.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}

	logger.Ctx(r.Context()).Warn().Str("client", clientID(r)).Int("limit", info.Limit).Msg("rate limit exceeded")
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// clientID identifies the caller by remote IP.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// statusRecorder captures the response status. It forwards Flush so that
// event streams keep working through the middleware.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withRequestLogging attaches a request-scoped logger and logs completion.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		log := logger.Ctx(r.Context()).With().Str("request_id", requestID).Logger()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(logger.WithContext(r.Context(), log)))

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).
			Dur("duration", time.Since(start)).Msg("request completed")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps a service error to its status and writes it.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	s.errorResponse(w, status, errorMessage(err, status))
}
