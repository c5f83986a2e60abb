package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Simulation outcomes, used as the outcome label.
const (
	OutcomeOK                  = "ok"
	OutcomeInvalidInput        = "invalid_input"
	OutcomeUnknownCatalogEntry = "unknown_catalog_entry"
	OutcomeSimulationError     = "simulation_error"
	OutcomeMalformedRequest    = "malformed_request"
)

// Collector bundles Prometheus metrics for the HTTP API and the simulations
// it runs.
type Collector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	Simulations   *prometheus.CounterVec
	PitStops      prometheus.Histogram
	FinalPosition prometheus.Histogram
}

// NewCollector registers metrics against the provided registerer, defaulting
// to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pitwall_http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by route pattern and status code.",
	}, []string{"route", "code"}), "pitwall_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pitwall_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"route"}), "pitwall_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	simulations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pitwall_simulations_total",
		Help: "Total number of simulation requests, labeled by outcome.",
	}, []string{"outcome"}), "pitwall_simulations_total")
	if err != nil {
		return nil, err
	}

	stops, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pitwall_pit_stops",
		Help:    "Pit stops taken per successful simulation.",
		Buckets: prometheus.LinearBuckets(0, 1, 6),
	}), "pitwall_pit_stops")
	if err != nil {
		return nil, err
	}

	position, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pitwall_final_position",
		Help:    "Finishing position per successful simulation.",
		Buckets: []float64{1, 3, 5, 10, 15, 20},
	}), "pitwall_final_position")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:      gatherer,
		HTTPRequests:  requests,
		HTTPDurations: durations,
		Simulations:   simulations,
		PitStops:      stops,
		FinalPosition: position,
	}, nil
}

// Middleware records request counts and durations, labeled by the chi route
// pattern so path parameters do not explode cardinality.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if c == nil {
			return
		}
		route := RoutePattern(r)
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		if c.HTTPRequests != nil {
			c.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
		}
		if c.HTTPDurations != nil {
			c.HTTPDurations.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

// RecordSimulation counts one simulation by outcome. Stops and position are
// observed only for successful runs.
func (c *Collector) RecordSimulation(outcome string, stops, position int) {
	if c == nil {
		return
	}
	if c.Simulations != nil {
		c.Simulations.WithLabelValues(outcome).Inc()
	}
	if outcome != OutcomeOK {
		return
	}
	if c.PitStops != nil {
		c.PitStops.Observe(float64(stops))
	}
	if c.FinalPosition != nil {
		c.FinalPosition.Observe(float64(position))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// RoutePattern returns the matched chi route pattern, or "unmatched" when
// the request did not hit a registered route.
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}
