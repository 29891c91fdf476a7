package services

import (
	"fmt"
	"itinerary-route-service/internal/domain"
	"math"
	"strconv"
	"strings"
)

// Display-ready trip metrics.
type TripMetrics struct {
	// Nil when neither a live route nor a fallback total is known.
	TotalDistanceKm    *float64
	TotalDurationHours *float64
	TotalDuration      string
	// Distance from the first stop to each stop; nil when no per-leg data exists.
	CumulativeKm []float64
	Legs         []domain.Leg
	// True when the totals come from the live route rather than the fallback.
	Live bool
}

// AggregateMetrics merges a route result with externally supplied totals.
// Totals from a non-fallback route win; otherwise the fallback totals are used.
func AggregateMetrics(route *domain.RouteResult, fallback domain.FallbackTotals) TripMetrics {
	var m TripMetrics

	if route != nil && !route.IsFallback {
		dist := route.Totals.DistanceKm
		hours := route.Totals.DurationHours
		m.TotalDistanceKm = &dist
		m.TotalDurationHours = &hours
		m.Live = true
	} else {
		if fallback.DistanceKm != nil && isFinite(*fallback.DistanceKm) {
			dist := *fallback.DistanceKm
			m.TotalDistanceKm = &dist
		}
		if fallback.DurationHours != nil {
			if hours, ok := parseHours(*fallback.DurationHours); ok {
				m.TotalDurationHours = &hours
			}
		}
	}

	if m.TotalDurationHours != nil {
		m.TotalDuration = FormatDurationHours(*m.TotalDurationHours)
	}

	if route != nil && len(route.Legs) > 0 {
		m.Legs = append([]domain.Leg(nil), route.Legs...)
		m.CumulativeKm = CumulativeDistances(route.Legs)
	}

	return m
}

// CumulativeDistances returns the distance from the first stop to each stop,
// rounding to one decimal at every step. It returns nil for no legs.
func CumulativeDistances(legs []domain.Leg) []float64 {
	if len(legs) == 0 {
		return nil
	}

	out := make([]float64, len(legs)+1)
	for i, leg := range legs {
		out[i+1] = domain.Round1(out[i] + leg.DistanceKm)
	}
	return out
}

// FormatDurationHours renders hours as "1 h 30 min", "45 min" or "2 h".
func FormatDurationHours(hours float64) string {
	minutes := int(math.Round(hours * 60))
	if minutes < 0 {
		minutes = 0
	}

	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%d min", m)
	case m == 0:
		return fmt.Sprintf("%d h", h)
	default:
		return fmt.Sprintf("%d h %d min", h, m)
	}
}

func parseHours(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(f) || f < 0 {
		return 0, false
	}
	return f, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
