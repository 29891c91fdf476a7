package routing

import (
	"context"
	"itinerary-route-service/internal/adapters/cache"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
	"testing"
	"time"
)

func TestCachedProviderServesRepeatFromCache(t *testing.T) {
	waypoints := []domain.Coordinates{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}}

	mock := NewMockRouteProvider()
	mock.Set(waypoints, ports.ProviderRoute{
		Path:           waypoints,
		DistanceMeters: 5000,
	})

	p := NewCachedProvider(mock, cache.NewMemoryRouteCache(16, time.Minute), "driving", nil)

	for i := 0; i < 3; i++ {
		route, err := p.Route(context.Background(), waypoints)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if route.DistanceMeters != 5000 {
			t.Fatalf("distance = %v, want 5000", route.DistanceMeters)
		}
	}

	if mock.Calls() != 1 {
		t.Fatalf("provider calls = %d, want 1", mock.Calls())
	}
}

func TestCachedProviderKeyIsOrderSensitive(t *testing.T) {
	a := domain.Coordinates{Lat: 1, Lon: 2}
	b := domain.Coordinates{Lat: 3, Lon: 4}

	if CacheKey("driving", []domain.Coordinates{a, b}) == CacheKey("driving", []domain.Coordinates{b, a}) {
		t.Fatalf("reversed waypoints must not share a cache key")
	}
}
