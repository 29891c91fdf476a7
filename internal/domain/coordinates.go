package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates in the service's latitude, longitude convention.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) LonLat() []float64 { return []float64{c.Lon, c.Lat} }

// Build coordinates from an external [lon, lat] pair.
func FromLonLat(p []float64) (Coordinates, error) {
	if len(p) < 2 {
		return Coordinates{}, fmt.Errorf("coordinates from lon/lat: want 2 values, got %d", len(p))
	}
	c := Coordinates{Lon: p[0], Lat: p[1]}
	if !c.Valid() {
		return Coordinates{}, fmt.Errorf("coordinates from lon/lat: non-finite value %v", p)
	}
	return c, nil
}

// Valid reports whether both axes are finite numbers.
func (c Coordinates) Valid() bool {
	return isFinite(c.Lat) && isFinite(c.Lon)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
