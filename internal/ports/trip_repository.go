package ports

import (
	"context"
	"errors"
	"itinerary-route-service/internal/domain"
)

// ErrTripNotFound is returned when a trip ID is unknown to the repository.
var ErrTripNotFound = errors.New("trip not found")

// Persisted composition of a trip.
type TripRecord struct {
	ID             string
	RawStops       []domain.RawStop
	Fallback       domain.FallbackTotals
	RoutingEnabled bool
	Reversed       bool
}

// Port: a boundary for loading and storing trip composition.
type TripRepository interface {
	GetTrip(ctx context.Context, id string) (TripRecord, error)
	SaveTrip(ctx context.Context, trip TripRecord) error
	// Store freshly computed totals as the trip's fallback totals.
	SaveTotals(ctx context.Context, id string, totals domain.TripTotals) error
}
