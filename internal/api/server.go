package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/mdattr/internal/config"
	"github.com/dgallion1/mdattr/internal/pipeline"
	"github.com/dgallion1/mdattr/internal/stats"
)

// Server is the HTTP API server for mdattr.
type Server struct {
	router   chi.Router
	pipeline *pipeline.Pipeline
	stats    *stats.RenderStats
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(p *pipeline.Pipeline, st *stats.RenderStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		pipeline: p,
		stats:    st,
		log:      log,
		cfg:      cfg,
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
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/render", s.handleRender)
		r.Post("/api/render/batch", s.handleBatchRender)
		r.Post("/api/ast", s.handleAST)
		r.Get("/api/stats", s.handleStats)
		r.Post("/api/policy/reload", s.handlePolicyReload)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// ReloadPolicy reads the policy file again and swaps it into the pipeline.
// Called by the hot-reloader on file change. An unchanged file is a no-op.
func (s *Server) ReloadPolicy() error {
	pol, hash, err := config.LoadPolicyWithHash(s.cfg.PolicyFile)
	if err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}
	if hash == s.pipeline.PolicyHash() {
		return nil
	}

	s.pipeline.SetTransformer(pol.Transformer(), hash)
	s.log.Info("policy reloaded", "path", s.cfg.PolicyFile, "policy_hash", hash, "scope", pol.Scope)
	return nil
}
