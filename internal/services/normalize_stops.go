package services

import (
	"fmt"
	"itinerary-route-service/internal/domain"
	"math"
	"slices"
	"strings"
)

// NormalizeStops turns raw stop records into routable stops.
//
// Records without finite coordinates are dropped silently. Blank titles get a
// positional placeholder. Visit order comes from "orden" only when the
// surviving records carry exactly the values 1..N; otherwise stops are numbered
// by their surviving position, so the result is always dense and unique.
func NormalizeStops(raw []domain.RawStop) []domain.Stop {
	type survivor struct {
		stop  domain.Stop
		orden int
		ok    bool
	}

	survivors := make([]survivor, 0, len(raw))
	for _, r := range raw {
		if r.Lat == nil || r.Lng == nil {
			continue
		}
		c := domain.Coordinates{Lat: *r.Lat, Lon: *r.Lng}
		if !c.Valid() {
			continue
		}

		pos := len(survivors) + 1
		title := strings.TrimSpace(r.Titulo)
		if title == "" {
			title = fmt.Sprintf("Stop %d", pos)
		}

		sv := survivor{stop: domain.Stop{Coordinates: c, Title: title, VisitOrder: pos}}
		if r.Orden != nil && !math.IsNaN(*r.Orden) && !math.IsInf(*r.Orden, 0) && *r.Orden == math.Trunc(*r.Orden) {
			sv.orden = int(*r.Orden)
			sv.ok = true
		}
		survivors = append(survivors, sv)
	}

	stops := make([]domain.Stop, 0, len(survivors))
	for _, sv := range survivors {
		stops = append(stops, sv.stop)
	}

	// Accept "orden" only when it is a permutation of 1..N.
	seen := make(map[int]struct{}, len(survivors))
	for _, sv := range survivors {
		if !sv.ok || sv.orden < 1 || sv.orden > len(survivors) {
			return stops
		}
		if _, dup := seen[sv.orden]; dup {
			return stops
		}
		seen[sv.orden] = struct{}{}
	}

	for i := range stops {
		stops[i].VisitOrder = survivors[i].orden
	}
	slices.SortStableFunc(stops, func(a, b domain.Stop) int {
		return a.VisitOrder - b.VisitOrder
	})

	return stops
}
