package services

import (
	"context"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"sync"
)

type EngineConfig struct {
	TripID         string
	DefaultCenter  domain.Coordinates
	RoutingEnabled bool
	// Start with the visiting order reversed.
	Reversed bool
	Metrics  *obs.RouteMetrics
	OnTotals func(domain.TripTotals)
}

// Everything a map client needs to draw one trip.
type MapView struct {
	Key            string
	Stops          []domain.Stop
	IsReversed     bool
	RoutingEnabled bool
	// False when no stop survived normalization.
	Available bool
	// Road-following path, fallback line, or the straight line through the
	// stops while no route result exists.
	Polyline     []domain.Coordinates
	Route        *domain.RouteResult
	RoutePending bool
	Viewport     Viewport
	Metrics      TripMetrics
	Links        DeepLinks
}

// Engine keeps one trip's order, route and derived map state consistent.
//
// The Trip is the single source of truth. Every change publishes a snapshot
// that restarts the route fetch; viewport, metrics and links are recomputed
// from the current snapshot on every read.
type Engine struct {
	trip          *domain.Trip
	fetcher       *RouteFetcher
	defaultCenter domain.Coordinates

	// Serializes writers so snapshots reach the fetcher in order.
	mu       sync.Mutex
	fallback domain.FallbackTotals
}

func NewEngine(provider ports.RouteProvider, cfg EngineConfig) *Engine {
	e := &Engine{
		trip:          domain.NewTrip(nil),
		defaultCenter: cfg.DefaultCenter,
	}
	if cfg.Reversed {
		e.trip.ToggleReversed()
	}
	e.fetcher = NewRouteFetcher(provider, FetcherOptions{
		Enabled:  cfg.RoutingEnabled,
		TripID:   cfg.TripID,
		Metrics:  cfg.Metrics,
		OnTotals: cfg.OnTotals,
	})
	e.trip.Subscribe(func(s domain.TripSnapshot) {
		e.fetcher.Fetch(s.Stops)
	})
	return e
}

// SetRawStops normalizes raw input and makes it the canonical stop order.
func (e *Engine) SetRawStops(raw []domain.RawStop) domain.TripSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trip.SetStops(NormalizeStops(raw))
}

// ToggleReversed flips the visiting order and restarts routing from scratch.
func (e *Engine) ToggleReversed() domain.TripSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trip.ToggleReversed()
}

func (e *Engine) IsReversed() bool {
	return e.trip.IsReversed()
}

func (e *Engine) SetFallbackTotals(f domain.FallbackTotals) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fallback = f
}

// SetRoutingEnabled changes the routing setting and refetches the current trip.
func (e *Engine) SetRoutingEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fetcher.SetEnabled(enabled)
	e.fetcher.Fetch(e.trip.DisplayStops())
}

func (e *Engine) FallbackTotals() domain.FallbackTotals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fallback
}

func (e *Engine) DisplayStops() []domain.Stop {
	return e.trip.DisplayStops()
}

// View derives the current map state.
func (e *Engine) View() MapView {
	e.mu.Lock()
	snap := e.trip.Snapshot()
	fallback := e.fallback
	route, pending := e.fetcher.Result()
	e.mu.Unlock()

	polyline := domain.StraightLine(snap.Stops)
	if route != nil {
		polyline = append([]domain.Coordinates(nil), route.Path...)
	}

	return MapView{
		Key:            snap.Key,
		Stops:          snap.Stops,
		IsReversed:     snap.IsReversed,
		RoutingEnabled: e.fetcher.Enabled(),
		Available:      len(snap.Stops) > 0,
		Polyline:       polyline,
		Route:          route,
		RoutePending:   pending,
		Viewport:       ComputeViewport(snap.Stops, e.defaultCenter),
		Metrics:        AggregateMetrics(route, fallback),
		Links:          BuildDeepLinks(snap.Stops),
	}
}

// Wait blocks until the current route request settles or ctx ends.
func (e *Engine) Wait(ctx context.Context) error {
	return e.fetcher.Wait(ctx)
}

// Close tears the engine down; any in-flight route request is abandoned.
func (e *Engine) Close() {
	e.fetcher.Close()
}
