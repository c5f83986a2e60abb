// Package server exposes the simulator over HTTP.
package server

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/pitwall-sim/pitwall/internal/observability"
	"github.com/pitwall-sim/pitwall/sim"
)

const (
	// SeedHeader carries the seed a simulation was run with.
	SeedHeader = "X-Simulation-Seed"
	// RequestIDHeader carries the per-request ID.
	RequestIDHeader = "X-Request-ID"

	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Server serves the simulation API.
type Server struct {
	sim       *sim.Simulator
	collector *observability.Collector
	seeds     func() int64
	tracer    trace.Tracer
}

// Option configures a Server.
type Option func(*Server)

// WithCollector records HTTP and simulation metrics and serves /metrics.
func WithCollector(c *observability.Collector) Option {
	return func(s *Server) {
		s.collector = c
	}
}

// WithSeedSource replaces the source of seeds for requests that omit one.
func WithSeedSource(next func() int64) Option {
	return func(s *Server) {
		s.seeds = next
	}
}

// New creates a server around simulator.
func New(simulator *sim.Simulator, opts ...Option) *Server {
	s := &Server{
		sim:    simulator,
		seeds:  rand.Int63,
		tracer: otel.Tracer("github.com/pitwall-sim/pitwall/internal/server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if s.collector != nil {
		r.Use(s.collector.Middleware)
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/simulate", s.handleSimulate)
		r.Get("/catalog", s.handleCatalog)
	})
	if s.collector != nil {
		r.Method(http.MethodGet, "/metrics", s.collector.Handler())
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logrus.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
