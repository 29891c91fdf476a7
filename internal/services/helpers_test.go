package services

import (
	"context"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
	"sync"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func raw(lat, lng float64, title string) domain.RawStop {
	return domain.RawStop{Lat: ptr(lat), Lng: ptr(lng), Titulo: title}
}

type gatedReply struct {
	route ports.ProviderRoute
	err   error
}

type gatedCall struct {
	waypoints []domain.Coordinates
	reply     chan gatedReply
}

// gatedProvider blocks every Route call until the test answers it, and
// ignores context cancellation so late resolutions can be simulated.
type gatedProvider struct {
	calls chan gatedCall
}

func newGatedProvider() *gatedProvider {
	return &gatedProvider{calls: make(chan gatedCall, 16)}
}

func (p *gatedProvider) Route(ctx context.Context, waypoints []domain.Coordinates) (ports.ProviderRoute, error) {
	call := gatedCall{waypoints: waypoints, reply: make(chan gatedReply, 1)}
	p.calls <- call
	r := <-call.reply
	return r.route, r.err
}

func (p *gatedProvider) next(t *testing.T) gatedCall {
	t.Helper()
	select {
	case c := <-p.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for provider call")
		return gatedCall{}
	}
}

func routeFor(waypoints []domain.Coordinates, meters, seconds float64) ports.ProviderRoute {
	legs := make([]ports.ProviderLeg, 0, len(waypoints)-1)
	for i := 1; i < len(waypoints); i++ {
		legs = append(legs, ports.ProviderLeg{
			DistanceMeters:  meters / float64(len(waypoints)-1),
			DurationSeconds: seconds / float64(len(waypoints)-1),
		})
	}
	return ports.ProviderRoute{
		Path:            waypoints,
		DistanceMeters:  meters,
		DurationSeconds: seconds,
		Legs:            legs,
	}
}

// totalsRecorder collects OnTotals callbacks.
type totalsRecorder struct {
	mu  sync.Mutex
	got []domain.TripTotals
	ch  chan domain.TripTotals
}

func newTotalsRecorder() *totalsRecorder {
	return &totalsRecorder{ch: make(chan domain.TripTotals, 16)}
}

func (r *totalsRecorder) record(t domain.TripTotals) {
	r.mu.Lock()
	r.got = append(r.got, t)
	r.mu.Unlock()
	r.ch <- t
}

func (r *totalsRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func (r *totalsRecorder) wait(t *testing.T) domain.TripTotals {
	t.Helper()
	select {
	case v := <-r.ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for totals callback")
		return domain.TripTotals{}
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}
