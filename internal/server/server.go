// Package server exposes the pipeline over HTTP.
//
// Routes:
//
//	GET    /healthz                 liveness probe
//	GET    /version                 build information
//	GET    /palette                 default link type colours
//	POST   /render?format=svg       render one artifact and return it directly
//	POST   /renders                 render and store; answers with the render id
//	GET    /renders/{id}            stored render metadata
//	GET    /renders/{id}/{format}   stored artifact
//	DELETE /renders/{id}            drop a stored render
//
// Request bodies are an input document with an optional "options" object
// carrying [pipeline.Options]. Errors are answered as JSON with the error
// code and an HTTP status derived from it.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/taskweb/pkg/pipeline"
	"github.com/matzehuels/taskweb/pkg/session"
)

const (
	// DefaultMaxBodyBytes limits request documents.
	DefaultMaxBodyBytes = 8 << 20

	// DefaultTimeout bounds one request, simulation included.
	DefaultTimeout = 2 * time.Minute

	shutdownTimeout = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	Addr         string
	Runner       *pipeline.Runner
	Store        session.Store
	Defaults     pipeline.Options // applied below per-request options
	SessionTTL   time.Duration
	MaxBodyBytes int64
	Timeout      time.Duration
	Logger       *log.Logger
}

// Server is the HTTP front end of the pipeline.
type Server struct {
	cfg    Config
	router chi.Router
}

// New creates a server. Missing collaborators get defaults: an uncached
// runner, an in-memory store and the default logger.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Store == nil {
		cfg.Store = session.NewMemoryStore()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(middleware.Timeout(s.cfg.Timeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Get("/palette", s.handlePalette)
	r.Post("/render", s.handleRender)

	r.Route("/renders", func(r chi.Router) {
		r.Post("/", s.handleCreateRender)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetRender)
			r.Delete("/", s.handleDeleteRender)
			r.Get("/{format}", s.handleGetArtifact)
		})
	})
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.cfg.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// Close releases the runner's cache.
func (s *Server) Close() error {
	return s.cfg.Runner.Close()
}
