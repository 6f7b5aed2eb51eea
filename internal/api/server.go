// Package api implements the bimtower HTTP API served by "bimtower serve".
//
// Routes:
//
//	GET    /health
//	POST   /v1/export                          manifest in, IFC out
//	POST   /v1/models                          save a manifest
//	GET    /v1/models                          list saved models
//	GET    /v1/models/{id}                     saved model with its manifest
//	DELETE /v1/models/{id}
//	GET    /v1/models/{id}/export.ifc
//	GET    /v1/models/{id}/scene.json
//	GET    /v1/models/{id}/render/{view}.{format}
//
// Manifests are posted as JSON, or as TOML with Content-Type
// application/toml. Errors are JSON objects with code and error fields.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/bimtower/pkg/pipeline"
	"github.com/matzehuels/bimtower/pkg/step"
	"github.com/matzehuels/bimtower/pkg/storage"
)

// DefaultMaxBodyBytes limits request bodies when no limit is configured.
const DefaultMaxBodyBytes = 10 << 20

// Server serves the HTTP API.
type Server struct {
	runner      *pipeline.Runner
	repo        storage.Repository
	logger      *log.Logger
	maxBody     int64
	header      step.Header
	projectName string
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes limits request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithExportDefaults sets header values and a project name applied to every
// export unless the request overrides them.
func WithExportDefaults(h step.Header, projectName string) Option {
	return func(s *Server) {
		s.header = h
		s.projectName = projectName
	}
}

// New creates a server. A nil logger discards output.
func New(runner *pipeline.Runner, repo storage.Repository, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{runner: runner, repo: repo, logger: logger, maxBody: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/export", s.handleExport)
		r.Route("/models", func(r chi.Router) {
			r.Get("/", s.handleListModels)
			r.Post("/", s.handleCreateModel)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetModel)
				r.Delete("/", s.handleDeleteModel)
				r.Get("/export.ifc", s.handleModelExport)
				r.Get("/scene.json", s.handleModelScene)
				r.Get("/render/{view}.{format}", s.handleModelRender)
			})
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Error: "no such route"})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
