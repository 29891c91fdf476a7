package ports

import (
	"context"
	"itinerary-route-service/internal/domain"
)

// Per-leg metrics as reported by a routing provider.
type ProviderLeg struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Road-following route for an ordered list of waypoints.
// Path is already converted to the domain latitude, longitude convention.
type ProviderRoute struct {
	Path            []domain.Coordinates
	DistanceMeters  float64
	DurationSeconds float64
	// Empty when the provider does not expose per-leg metrics.
	Legs []ProviderLeg
}

// Contract for retrieving a road-following route through ordered waypoints.
type RouteProvider interface {
	// Return one route covering every waypoint in order.
	Route(ctx context.Context, waypoints []domain.Coordinates) (ProviderRoute, error)
}
