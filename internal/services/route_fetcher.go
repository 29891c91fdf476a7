package services

import (
	"context"
	"errors"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"log"
	"math"
	"sync"
	"time"
)

var errEmptyPath = errors.New("route fetcher: provider returned an empty path")

type FetcherOptions struct {
	Enabled bool
	TripID  string
	Metrics *obs.RouteMetrics
	// Called once per committed, non-fallback route with its whole-trip totals.
	OnTotals func(domain.TripTotals)
}

// RouteFetcher requests road-following routes for successive trip snapshots.
//
// Each Fetch supersedes the previous one: the in-flight request is cancelled
// and its resolution is discarded, whether it succeeds or fails. Only the
// latest request may commit a result. A generation counter is checked before
// committing, so a transport that ignores cancellation cannot leak stale state.
type RouteFetcher struct {
	provider ports.RouteProvider
	metrics  *obs.RouteMetrics
	onTotals func(domain.TripTotals)
	tripID   string

	baseCtx context.Context
	stop    context.CancelFunc

	// Held while onTotals runs so callbacks never overlap or reorder.
	notifyMu sync.Mutex

	mu      sync.Mutex
	enabled bool
	closed  bool
	gen     uint64
	cancel  context.CancelFunc
	result  *domain.RouteResult
	pending bool
	done    chan struct{}
}

func NewRouteFetcher(provider ports.RouteProvider, opts FetcherOptions) *RouteFetcher {
	ctx, stop := context.WithCancel(context.Background())
	if opts.TripID != "" {
		ctx = obs.WithTripID(ctx, opts.TripID)
	}

	done := make(chan struct{})
	close(done)

	return &RouteFetcher{
		provider: provider,
		metrics:  opts.Metrics,
		onTotals: opts.OnTotals,
		tripID:   opts.TripID,
		baseCtx:  ctx,
		stop:     stop,
		enabled:  opts.Enabled,
		done:     done,
	}
}

// SetEnabled switches road routing on or off for subsequent fetches.
func (f *RouteFetcher) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled
}

func (f *RouteFetcher) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

// Fetch cancels any in-flight request, clears the published result and, when
// routing is enabled and at least two stops exist, starts a new request for
// the whole ordered stop list.
func (f *RouteFetcher) Fetch(stops []domain.Stop) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	f.gen++
	gen := f.gen

	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.result = nil
	f.settleLocked()
	f.done = make(chan struct{})

	if !f.enabled || len(stops) < 2 {
		f.settleLocked()
		f.metrics.Fetched(obs.OutcomeSkipped)
		return
	}

	ctx, cancel := context.WithCancel(f.baseCtx)
	f.cancel = cancel
	f.pending = true

	go f.run(ctx, gen, domain.CloneStops(stops))
}

func (f *RouteFetcher) run(ctx context.Context, gen uint64, stops []domain.Stop) {
	start := time.Now()
	route, err := f.provider.Route(ctx, domain.StopCoordinates(stops))
	f.metrics.Observe(start)

	var result *domain.RouteResult
	if err == nil {
		result, err = routeResultFrom(route, len(stops))
	}

	f.mu.Lock()
	// Superseded or torn down: drop the resolution without touching state.
	if gen != f.gen || ctx.Err() != nil || f.closed {
		f.mu.Unlock()
		f.metrics.Fetched(obs.OutcomeDiscarded)
		return
	}

	if err != nil {
		log.Printf("route fetch degraded to straight line: trip_id=%s stops=%d err=%v", f.tripID, len(stops), err)
		result = &domain.RouteResult{
			Path:       domain.StraightLine(stops),
			IsFallback: true,
		}
	}

	f.result = result
	f.cancel()
	f.cancel = nil
	f.settleLocked()
	f.mu.Unlock()

	if result.IsFallback {
		f.metrics.Fetched(obs.OutcomeFallback)
		return
	}
	f.metrics.Fetched(obs.OutcomeRouted)

	f.notifyTotals(gen, result.Totals)
}

// notifyTotals hands totals of generation gen to onTotals unless a newer
// Fetch has started since the result was committed.
func (f *RouteFetcher) notifyTotals(gen uint64, totals domain.TripTotals) {
	if f.onTotals == nil {
		return
	}

	f.notifyMu.Lock()
	defer f.notifyMu.Unlock()

	f.mu.Lock()
	current := gen == f.gen && !f.closed
	f.mu.Unlock()
	if !current {
		return
	}
	f.onTotals(totals)
}

// settleLocked releases waiters of the current request.
func (f *RouteFetcher) settleLocked() {
	f.pending = false
	select {
	case <-f.done:
	default:
		close(f.done)
	}
}

// Result returns the committed route (nil if none) and whether a request is
// still in flight.
func (f *RouteFetcher) Result() (*domain.RouteResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.pending
}

// Done returns a channel closed when the current request settles or is
// superseded.
func (f *RouteFetcher) Done() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

// Wait blocks until no request is in flight or ctx ends.
func (f *RouteFetcher) Wait(ctx context.Context) error {
	for {
		ch := f.Done()
		select {
		case <-ch:
			if _, pending := f.Result(); !pending {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close aborts any in-flight request; later resolutions are ignored.
func (f *RouteFetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	f.stop()
	f.cancel = nil
	f.settleLocked()
}

// routeResultFrom converts a provider route. Legs are kept only when the
// provider reports exactly one per consecutive stop pair; they are never
// estimated from the trip total.
func routeResultFrom(route ports.ProviderRoute, stops int) (*domain.RouteResult, error) {
	if len(route.Path) == 0 {
		return nil, errEmptyPath
	}

	result := &domain.RouteResult{
		Path: append([]domain.Coordinates(nil), route.Path...),
		Totals: domain.TripTotals{
			DistanceKm:    domain.Round1(route.DistanceMeters / 1000),
			DurationHours: domain.Round1(route.DurationSeconds / 3600),
		},
	}

	if len(route.Legs) == stops-1 {
		result.Legs = make([]domain.Leg, 0, len(route.Legs))
		for _, l := range route.Legs {
			result.Legs = append(result.Legs, domain.Leg{
				DistanceKm:      domain.Round1(l.DistanceMeters / 1000),
				DurationMinutes: int(math.Round(l.DurationSeconds / 60)),
			})
		}
	}

	return result, nil
}
