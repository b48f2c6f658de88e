// Package web provides the HTTP API and dashboard for table resolution.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/JonMunkholm/filingmap/internal/config"
	"github.com/JonMunkholm/filingmap/internal/core"
	"github.com/JonMunkholm/filingmap/internal/store"
	mw "github.com/JonMunkholm/filingmap/internal/web/middleware"
)

// RunReader reads stored pipeline runs. *store.Store implements it.
type RunReader interface {
	GetRun(ctx context.Context, runID uuid.UUID) (*store.Run, error)
	ListArtifacts(ctx context.Context, runID uuid.UUID) ([]store.Artifact, error)
}

// Option configures a Server.
type Option func(*Server)

// WithRuns enables the /api/runs routes.
func WithRuns(runs RunReader) Option {
	return func(s *Server) { s.runs = runs }
}

// Server is the HTTP server for the table registries.
type Server struct {
	service *core.Service
	runs    RunReader
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders)
	s.router.Use(s.limitBody)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleDashboard)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		r.Get("/status", s.handleStatus)

		// Form tables
		r.Get("/tables", s.handleListTables)
		r.Get("/tables/{id}", s.handleGetTable)
		r.Post("/tables/{id}/resolve", s.handleResolveTable)
		r.Post("/resolve", s.handleResolveAll)

		// XBRL instances
		r.Post("/xbrl/facts", s.handleFacts)
		r.Post("/xbrl/tables", s.handleXBRLTables)

		// Stored pipeline runs
		if s.runs != nil {
			r.Get("/runs/{id}", s.handleGetRun)
			r.Get("/runs/{id}/artifacts", s.handleListArtifacts)
		}
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	sc := s.cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}

	slog.Info("starting server", "addr", sc.Addr())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// limitBody caps request bodies at Server.MaxBodySize.
func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && s.cfg.Server.MaxBodySize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodySize)
		}
		next.ServeHTTP(w, r)
	})
}
