// Package server implements the DiagramSmith HTTP API.
//
// The API exposes diagram generation over REST: POST /v1/diagrams runs the
// full pipeline and returns the result as JSON, GET /v1/diagrams/recent
// lists past generations from the history store, and GET /healthz reports
// liveness. Every request is tagged with a UUID request id, echoed in the
// X-Request-ID header and attached to all log lines.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/diagramsmith/internal/config"
	"github.com/matzehuels/diagramsmith/pkg/diagram"
	"github.com/matzehuels/diagramsmith/pkg/history"
	"github.com/matzehuels/diagramsmith/pkg/pipeline"
)

// Generator runs one diagram generation request. Implemented by
// pipeline.Runner; tests substitute stubs.
type Generator interface {
	Generate(ctx context.Context, content string, opts pipeline.Options) (*diagram.Result, error)
}

// Server is the HTTP API server.
type Server struct {
	generator Generator
	store     history.Store
	logger    *log.Logger
	defaults  diagram.Config
	timeout   time.Duration
}

// New creates a server. store may be nil to disable history.
func New(g Generator, store history.Store, logger *log.Logger, cfg config.Server, defaults diagram.Config) *Server {
	if store == nil {
		store = history.NewNullStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	timeout := cfg.RequestTimeout()
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &Server{
		generator: g,
		store:     store,
		logger:    logger,
		defaults:  defaults,
		timeout:   timeout,
	}
}

// Handler builds the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/diagrams", s.handleGenerate)
		r.Get("/diagrams/recent", s.handleRecent)
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}
