package services

import "itinerary-route-service/internal/domain"

const singleStopZoom = 13

// Map center and zoom level.
type Viewport struct {
	Center domain.Coordinates
	Zoom   int
}

// Spread thresholds in degrees and their zoom levels, widest zoom last.
var zoomSteps = []struct {
	below float64
	zoom  int
}{
	{0.01, 16},
	{0.02, 15},
	{0.05, 14},
	{0.1, 13},
	{0.3, 11},
	{0.5, 10},
	{1, 9},
	{2, 8},
}

// ComputeViewport centers the map on the mean stop position and picks a zoom
// from the larger of the latitude and longitude spreads.
//
// This is a coarse step heuristic rather than a bounding-box fit; the
// breakpoints are shared with the map clients and must not drift.
func ComputeViewport(stops []domain.Stop, defaultCenter domain.Coordinates) Viewport {
	if len(stops) == 0 {
		return Viewport{Center: defaultCenter, Zoom: singleStopZoom}
	}

	var sumLat, sumLon float64
	minLat, maxLat := stops[0].Lat, stops[0].Lat
	minLon, maxLon := stops[0].Lon, stops[0].Lon
	for _, s := range stops {
		sumLat += s.Lat
		sumLon += s.Lon
		minLat = min(minLat, s.Lat)
		maxLat = max(maxLat, s.Lat)
		minLon = min(minLon, s.Lon)
		maxLon = max(maxLon, s.Lon)
	}

	n := float64(len(stops))
	center := domain.Coordinates{Lat: sumLat / n, Lon: sumLon / n}

	if len(stops) == 1 {
		return Viewport{Center: center, Zoom: singleStopZoom}
	}

	return Viewport{Center: center, Zoom: ZoomForSpread(max(maxLat-minLat, maxLon-minLon))}
}

// ZoomForSpread maps a coordinate spread in degrees to a zoom level.
func ZoomForSpread(spread float64) int {
	for _, step := range zoomSteps {
		if spread < step.below {
			return step.zoom
		}
	}
	return 7
}
