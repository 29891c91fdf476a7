package obs

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Route fetch outcomes.
const (
	OutcomeRouted    = "routed"
	OutcomeFallback  = "fallback"
	OutcomeDiscarded = "discarded"
	OutcomeSkipped   = "skipped"
)

// RouteMetrics bundles Prometheus metrics for route fetching.
type RouteMetrics struct {
	Fetches        *prometheus.CounterVec
	FetchDurations prometheus.Histogram
	CacheLookups   *prometheus.CounterVec
}

// NewRouteMetrics registers route metrics against reg, defaulting to the
// global Prometheus registry when nil.
func NewRouteMetrics(reg prometheus.Registerer) (*RouteMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "route_fetches_total",
		Help: "Route fetches by outcome (routed, fallback, discarded, skipped).",
	}, []string{"outcome"})
	fetches, err := register(reg, fetches)
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_fetch_duration_seconds",
		Help:    "Routing provider latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
	durations, err = register(reg, durations)
	if err != nil {
		return nil, err
	}

	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "route_cache_lookups_total",
		Help: "Route cache lookups by result (hit, miss, error).",
	}, []string{"result"})
	lookups, err = register(reg, lookups)
	if err != nil {
		return nil, err
	}

	return &RouteMetrics{
		Fetches:        fetches,
		FetchDurations: durations,
		CacheLookups:   lookups,
	}, nil
}

// register returns the already registered collector when one exists.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

// Fetched records the outcome of a route fetch. Safe on a nil receiver.
func (m *RouteMetrics) Fetched(outcome string) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(outcome).Inc()
}

// Observe records provider latency since start. Safe on a nil receiver.
func (m *RouteMetrics) Observe(start time.Time) {
	if m == nil {
		return
	}
	m.FetchDurations.Observe(time.Since(start).Seconds())
}

// CacheLookup records a cache lookup result. Safe on a nil receiver.
func (m *RouteMetrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
