// Package core is the HTTP surface of the evaluator. It exposes a health
// endpoint and an authenticated trigger that runs one evaluation cycle, for
// schedulers that call over HTTP instead of invoking the Lambda directly.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzhttp"

	"lightwatch/internal/alerts"
	"lightwatch/internal/config"
)

// CycleRunner runs one evaluation cycle for an invocation payload.
// *alerts.Orchestrator satisfies it.
type CycleRunner interface {
	Invoke(ctx context.Context, in alerts.InvocationInput) (*alerts.InvocationResult, error)
}

// Server holds the dependencies of the HTTP surface.
type Server struct {
	Config       *config.Config
	Logger       *slog.Logger
	Runner       CycleRunner
	HealthProbes []HealthProbe

	router *chi.Mux
}

// NewServer validates its inputs and returns a Server with an empty router.
// Call MountRoutes before serving.
func NewServer(cfg *config.Config, runner CycleRunner, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if runner == nil {
		return nil, fmt.Errorf("cycle runner must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config: cfg,
		Logger: logger,
		Runner: runner,
		router: chi.NewRouter(),
	}, nil
}

// Handler returns the router wrapped in gzip response compression.
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.router)
}

// Router returns the underlying chi.Mux.
func (s *Server) Router() *chi.Mux {
	return s.router
}
