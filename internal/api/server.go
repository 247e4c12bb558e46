package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/notescribe/internal/config"
	"github.com/dgallion1/notescribe/internal/examples"
	"github.com/dgallion1/notescribe/internal/inference"
	"github.com/dgallion1/notescribe/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// HealthChecker reports whether the classification model is ready.
type HealthChecker interface {
	ModelLoaded(ctx context.Context) bool
}

// Services are the collaborators the handlers call into. Nil fields disable
// the endpoints that need them.
type Services struct {
	Predictor    inference.Predictor
	Health       HealthChecker
	Stats        *inference.LatencyStats
	Examples     *examples.Store
	Orchestrator *pipeline.Orchestrator
}

// Server is the HTTP API server for notescribe.
type Server struct {
	router chi.Router
	svc    Services
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(svc Services, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		svc: svc,
		log: log,
		cfg: cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if !s.cfg.AuthDisabled {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/labels", s.handleLabels)
		r.Get("/api/examples", s.handleExamples)

		r.Post("/api/decode", s.handleDecode)
		r.Post("/api/analyze", s.handleAnalyze)
		r.Post("/api/transcript/segment", s.handleSegment)
		r.Post("/api/report", s.handleReport)

		r.Post("/api/documents", s.handleUpload)
		r.Get("/api/documents/{jobID}/status", s.handleDocumentStatus)
		r.Get("/api/documents/{jobID}/result", s.handleDocumentResult)

		r.Get("/api/stats/inference", s.handleInferenceStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	loaded := false
	if s.svc.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		loaded = s.svc.Health.ModelLoaded(ctx)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"model_loaded": loaded,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
