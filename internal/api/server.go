// Package api serves the task bridge over HTTP so an out-of-process GUI can
// drive installs the same way the shared library does.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/bridge"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/errs"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Server wraps the chi router and the bridge it exposes.
type Server struct {
	router *chi.Mux
	bridge *bridge.Bridge
	addr   string
}

// NewServer creates and configures a new HTTP server.
func NewServer(addr string, b *bridge.Bridge) *Server {
	srv := &Server{
		router: chi.NewRouter(),
		bridge: b,
		addr:   addr,
	}

	srv.router.Use(middleware.RequestID)
	srv.router.Use(middleware.Recoverer)
	srv.router.Use(loggingMiddleware)
	srv.router.Use(metricsMiddleware)
	srv.router.Use(preconditionMiddleware)
	srv.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	srv.routes()

	return srv
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", metricsHandler())

	s.router.Route("/v1/tasks", func(r chi.Router) {
		r.Post("/", s.handleCreateTask)
		r.Get("/{handle}", s.handlePollTask)
		r.Post("/{handle}/await", s.handleAwaitTask)
		r.Delete("/{handle}", s.handleCancelTask)
	})

	s.router.Route("/v1/catalog", func(r chi.Router) {
		r.Get("/", s.handleGetCatalog)
		r.Get("/latest", s.handleLatestRelease)
		r.Get("/versions/{index}", s.handleGetVersion)
	})

	s.router.Route("/v1/jvms", func(r chi.Router) {
		r.Get("/", s.handleListJVMs)
		r.Post("/", s.handleAddJVM)
		r.Delete("/{index}", s.handleRemoveJVM)
	})

	s.router.Get("/v1/history", s.handleListHistory)
}

// Router returns the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API listening on %s", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down API server")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("API server stopped")
	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log := logger.With("api")
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// preconditionMiddleware answers a misused handle or an unloaded store with 409.
// Any other panic continues to the outer recoverer.
func preconditionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			err, ok := rec.(error)
			if !ok || errs.KindOf(err) != errs.KindPrecondition {
				panic(rec)
			}
			logger.Warn("Rejected %s %s: %v", r.Method, r.URL.Path, err)
			writeError(w, http.StatusConflict, err.Error())
		}()

		next.ServeHTTP(w, r)
	})
}
