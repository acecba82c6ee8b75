// Package api exposes analysis, account and report endpoints over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"git.home.luguber.info/inful/semcheck/internal/auth"
	"git.home.luguber.info/inful/semcheck/internal/events"
	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/metrics"
	"git.home.luguber.info/inful/semcheck/internal/pipeline"
	"git.home.luguber.info/inful/semcheck/internal/store"
)

// Deps are the collaborators the server needs. Pipeline, Auth and Analyses
// are required.
type Deps struct {
	Pipeline  *pipeline.Pipeline
	Auth      *auth.Manager
	Analyses  store.AnalysisStore
	Publisher events.Publisher
	Recorder  metrics.Recorder
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler
	Logger  *slog.Logger
}

// Options tune the HTTP server.
type Options struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
	// RequireAuth protects the upload endpoints.
	RequireAuth bool
	// PublishTimeout bounds the background delivery of one analysis event.
	PublishTimeout time.Duration
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Addr:           ":8000",
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxUploadBytes: 10 << 20,
		RequireAuth:    true,
		PublishTimeout: 30 * time.Second,
	}
}

// Server represents the API server.
type Server struct {
	deps     Deps
	opts     Options
	router   *chi.Mux
	server   *http.Server
	errors   *errors.HTTPErrorAdapter
	logger   *slog.Logger
	recorder metrics.Recorder

	publishes sync.WaitGroup
}

// NewServer creates a new API server.
func NewServer(deps Deps, opts Options) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Recorder == nil {
		deps.Recorder = metrics.NoopRecorder{}
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NoopPublisher{}
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultOptions().MaxUploadBytes
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = DefaultOptions().PublishTimeout
	}

	s := &Server{
		deps:     deps,
		opts:     opts,
		router:   chi.NewRouter(),
		errors:   errors.NewHTTPErrorAdapter(deps.Logger),
		logger:   deps.Logger,
		recorder: deps.Recorder,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHealth)
	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate(s.opts.RequireAuth))
		r.Use(s.limitBody)
		r.Post("/uploadByFile", s.handleUploadByFile)
		r.Post("/uploadByRaw", s.handleUploadByRaw)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate(true))
		r.Get("/users/me", s.handleMe)
		r.Get("/analyses", s.handleListAnalyses)
		r.Get("/analyses/{id}", s.handleGetAnalysis)
		r.Get("/analyses/{id}/report", s.handleAnalysisReport)
	})
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.opts.Addr }

// Start starts the API server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("Starting API server", "addr", s.opts.Addr, "require_auth", s.opts.RequireAuth)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and waits for in-flight event
// deliveries until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.publishes.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Running!"})
}
