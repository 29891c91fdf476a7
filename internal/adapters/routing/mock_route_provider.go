package routing

import (
	"context"
	"fmt"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
	"sync"
)

// MockRouteProvider answers from a fixed table keyed by the coordinate path.
type MockRouteProvider struct {
	mu     sync.Mutex
	routes map[string]ports.ProviderRoute
	errs   map[string]error
	calls  int
}

func NewMockRouteProvider() *MockRouteProvider {
	return &MockRouteProvider{
		routes: make(map[string]ports.ProviderRoute),
		errs:   make(map[string]error),
	}
}

// Set registers the route returned for waypoints.
func (p *MockRouteProvider) Set(waypoints []domain.Coordinates, route ports.ProviderRoute) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[CoordinatePath(waypoints)] = route
}

// Fail registers an error returned for waypoints.
func (p *MockRouteProvider) Fail(waypoints []domain.Coordinates, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[CoordinatePath(waypoints)] = err
}

func (p *MockRouteProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *MockRouteProvider) Route(ctx context.Context, waypoints []domain.Coordinates) (ports.ProviderRoute, error) {
	if err := ctx.Err(); err != nil {
		return ports.ProviderRoute{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++

	key := CoordinatePath(waypoints)
	if err, ok := p.errs[key]; ok {
		return ports.ProviderRoute{}, err
	}
	r, ok := p.routes[key]
	if !ok {
		return ports.ProviderRoute{}, fmt.Errorf("missing route %q", key)
	}
	return r, nil
}
