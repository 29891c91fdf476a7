package domain

import "strconv"

// Represents the routed segment between two consecutive display stops.
type Leg struct {
	DistanceKm      float64
	DurationMinutes int
}

// Represents the outcome of a routing computation for one trip snapshot.
// A RouteResult is published once and never mutated afterwards; a new trip
// snapshot produces a new RouteResult.
type RouteResult struct {
	Path       []Coordinates
	Legs       []Leg
	IsFallback bool
	// Whole-trip totals reported by the provider; zero for fallback results.
	Totals TripTotals
}

// Whole-trip distance and duration, each rounded to one decimal.
type TripTotals struct {
	DistanceKm    float64
	DurationHours float64
}

// AsFallback formats live totals the way they are stored and shown as
// fallback totals, with hours to one decimal.
func (t TripTotals) AsFallback() FallbackTotals {
	dist := t.DistanceKm
	hours := strconv.FormatFloat(t.DurationHours, 'f', 1, 64)
	return FallbackTotals{DistanceKm: &dist, DurationHours: &hours}
}

// Totals supplied from outside the engine (e.g. previously persisted),
// shown until a live RouteResult is available.
type FallbackTotals struct {
	DistanceKm *float64
	// Hours as a pre-formatted numeral, e.g. "1.5".
	DurationHours *string
}

// Straight line through the given stops, in order.
func StraightLine(stops []Stop) []Coordinates {
	return StopCoordinates(stops)
}
