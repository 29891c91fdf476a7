package services

import (
	"context"
	"fmt"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type SessionConfig struct {
	DefaultCenter  domain.Coordinates
	RoutingEnabled bool
	Metrics        *obs.RouteMetrics
}

// Sessions holds one live Engine per trip, loaded lazily from the repository.
// It is safe for concurrent use.
type Sessions struct {
	repo     ports.TripRepository
	provider ports.RouteProvider
	cfg      SessionConfig

	mu    sync.Mutex
	trips map[string]*tripSession
}

// tripSession pairs a live engine with the lock that keeps its repository
// record and engine state changing together.
type tripSession struct {
	mu     sync.Mutex
	engine *Engine
}

func NewSessions(repo ports.TripRepository, provider ports.RouteProvider, cfg SessionConfig) *Sessions {
	return &Sessions{
		repo:     repo,
		provider: provider,
		cfg:      cfg,
		trips:    make(map[string]*tripSession),
	}
}

// Create stores a new trip and starts its engine.
func (s *Sessions) Create(ctx context.Context, raw []domain.RawStop, fallback domain.FallbackTotals) (string, *Engine, error) {
	rec := ports.TripRecord{
		ID:             uuid.NewString(),
		RawStops:       raw,
		Fallback:       fallback,
		RoutingEnabled: s.cfg.RoutingEnabled,
	}
	if err := s.repo.SaveTrip(ctx, rec); err != nil {
		return "", nil, fmt.Errorf("create trip: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.startLocked(rec)
	return rec.ID, ts.engine, nil
}

// Engine returns the live engine for a trip, loading it on first use.
func (s *Sessions) Engine(ctx context.Context, id string) (*Engine, error) {
	ts, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	return ts.engine, nil
}

func (s *Sessions) session(ctx context.Context, id string) (*tripSession, error) {
	s.mu.Lock()
	if ts, ok := s.trips[id]; ok {
		s.mu.Unlock()
		return ts, nil
	}
	s.mu.Unlock()

	rec, err := s.repo.GetTrip(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load trip %q: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another caller may have loaded it meanwhile.
	if ts, ok := s.trips[id]; ok {
		return ts, nil
	}
	return s.startLocked(rec), nil
}

func (s *Sessions) startLocked(rec ports.TripRecord) *tripSession {
	id := rec.ID
	ts := &tripSession{}
	ts.engine = NewEngine(s.provider, EngineConfig{
		TripID:         id,
		DefaultCenter:  s.cfg.DefaultCenter,
		RoutingEnabled: rec.RoutingEnabled,
		Reversed:       rec.Reversed,
		Metrics:        s.cfg.Metrics,
		OnTotals: func(t domain.TripTotals) {
			s.persistTotals(ts, id, t)
		},
	})
	ts.engine.SetFallbackTotals(rec.Fallback)
	ts.engine.SetRawStops(rec.RawStops)
	s.trips[id] = ts
	return ts
}

// persistTotals keeps the latest live totals as the trip's fallback totals,
// in the repository and in the engine alike.
func (s *Sessions) persistTotals(ts *tripSession, id string, t domain.TripTotals) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if err := s.repo.SaveTotals(ctx, id, t); err != nil {
		log.Printf("persist trip totals failed: trip_id=%s err=%v", id, err)
		return
	}
	ts.engine.SetFallbackTotals(t.AsFallback())
}

// update loads the stored record, lets mutate change it, saves it and then
// applies it to the engine, all under the trip's lock.
func (s *Sessions) update(ctx context.Context, id, op string, mutate func(*ports.TripRecord, *Engine), apply func(ports.TripRecord, *Engine)) (*Engine, error) {
	ts, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	rec, err := s.repo.GetTrip(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	mutate(&rec, ts.engine)
	if err := s.repo.SaveTrip(ctx, rec); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	apply(rec, ts.engine)
	return ts.engine, nil
}

// ReplaceStops stores new raw stops (and optionally new fallback totals) and
// applies them to the live engine.
func (s *Sessions) ReplaceStops(ctx context.Context, id string, raw []domain.RawStop, fallback *domain.FallbackTotals) (*Engine, error) {
	return s.update(ctx, id, "replace stops",
		func(rec *ports.TripRecord, _ *Engine) {
			rec.RawStops = raw
			if fallback != nil {
				rec.Fallback = *fallback
			}
		},
		func(rec ports.TripRecord, e *Engine) {
			if fallback != nil {
				e.SetFallbackTotals(rec.Fallback)
			}
			e.SetRawStops(rec.RawStops)
		})
}

// UpdateTotals changes the trip's fallback totals. patch receives the stored
// totals, which include the latest live totals, and returns the new ones.
func (s *Sessions) UpdateTotals(ctx context.Context, id string, patch func(domain.FallbackTotals) domain.FallbackTotals) (*Engine, error) {
	return s.update(ctx, id, "update totals",
		func(rec *ports.TripRecord, _ *Engine) {
			rec.Fallback = patch(rec.Fallback)
		},
		func(rec ports.TripRecord, e *Engine) {
			e.SetFallbackTotals(rec.Fallback)
		})
}

// SetRouting enables or disables road routing for a trip.
func (s *Sessions) SetRouting(ctx context.Context, id string, enabled bool) (*Engine, error) {
	return s.update(ctx, id, "set routing",
		func(rec *ports.TripRecord, _ *Engine) {
			rec.RoutingEnabled = enabled
		},
		func(_ ports.TripRecord, e *Engine) {
			e.SetRoutingEnabled(enabled)
		})
}

// Reverse flips the trip's visiting order and stores the new orientation.
func (s *Sessions) Reverse(ctx context.Context, id string) (*Engine, error) {
	return s.update(ctx, id, "reverse trip",
		func(rec *ports.TripRecord, e *Engine) {
			rec.Reversed = !e.IsReversed()
		},
		func(rec ports.TripRecord, e *Engine) {
			if e.IsReversed() != rec.Reversed {
				e.ToggleReversed()
			}
		})
}

// Close abandons every in-flight route request.
func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ts := range s.trips {
		ts.engine.Close()
		delete(s.trips, id)
	}
}
