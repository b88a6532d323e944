// Package server implements the argviz HTTP API.
//
// The API exposes snapshot storage and the layout pipeline over JSON. All
// routes live under /api except the health probe.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/argviz/argviz/pkg/layout"
	"github.com/argviz/argviz/pkg/observability"
	"github.com/argviz/argviz/pkg/pipeline"
	"github.com/argviz/argviz/pkg/store"
)

// Defaults supplies configured fallbacks for layout requests that omit
// canvas dimensions or relaxation tuning. Zero fields fall through to the
// pipeline's own defaults.
type Defaults struct {
	Width      float64
	Height     float64
	Relaxation layout.RelaxOptions
}

// Server wires the snapshot store and layout runner into an HTTP handler.
type Server struct {
	store    store.Store
	runner   *pipeline.Runner
	logger   *log.Logger
	defaults Defaults
	router   chi.Router
}

// New creates a server. A nil logger falls back to the default logger.
func New(st store.Store, runner *pipeline.Runner, logger *log.Logger, defaults Defaults) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		store:    st,
		runner:   runner,
		logger:   logger,
		defaults: defaults,
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes builds the chi router.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)

		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", s.handleListSnapshots)
			r.Post("/", s.handleUploadSnapshot)
			r.Get("/{id}", s.handleGetSnapshot)
			r.Delete("/{id}", s.handleDeleteSnapshot)
			r.Get("/{id}/layout", s.handleSnapshotLayout)
		})
	})

	return r
}

// logRequests logs every request and feeds the server hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.Server().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		observability.Server().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", elapsed)
	})
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
