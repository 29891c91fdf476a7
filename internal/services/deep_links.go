package services

import (
	"fmt"
	"itinerary-route-service/internal/domain"
	"net/url"
	"strings"
)

// Outbound navigation URLs for the current display order. Nil means the link
// cannot be built (no stops).
type DeepLinks struct {
	GoogleMaps *string
	Waze       *string
	AppleMaps  *string
}

// BuildDeepLinks derives navigation links from stops in display order.
//
// Google Maps receives the whole trip (origin, waypoints, destination). Waze
// and Apple Maps only ever receive the last stop.
func BuildDeepLinks(stops []domain.Stop) DeepLinks {
	if len(stops) == 0 {
		return DeepLinks{}
	}

	last := stops[len(stops)-1]
	google := googleMapsURL(stops)
	waze := wazeURL(last.Coordinates)
	apple := appleMapsURL(last.Coordinates)

	return DeepLinks{GoogleMaps: &google, Waze: &waze, AppleMaps: &apple}
}

func googleMapsURL(stops []domain.Stop) string {
	q := url.Values{}
	q.Set("api", "1")
	q.Set("travelmode", "driving")

	if len(stops) == 1 {
		q.Set("destination", latLng(stops[0].Coordinates))
		return "https://www.google.com/maps/dir/?" + q.Encode()
	}

	q.Set("origin", latLng(stops[0].Coordinates))
	q.Set("destination", latLng(stops[len(stops)-1].Coordinates))

	if mid := stops[1 : len(stops)-1]; len(mid) > 0 {
		points := make([]string, 0, len(mid))
		for _, s := range mid {
			points = append(points, latLng(s.Coordinates))
		}
		q.Set("waypoints", strings.Join(points, "|"))
	}

	return "https://www.google.com/maps/dir/?" + q.Encode()
}

func wazeURL(c domain.Coordinates) string {
	q := url.Values{}
	q.Set("ll", latLng(c))
	q.Set("navigate", "yes")
	return "https://waze.com/ul?" + q.Encode()
}

func appleMapsURL(c domain.Coordinates) string {
	q := url.Values{}
	q.Set("daddr", latLng(c))
	q.Set("dirflg", "d")
	return "https://maps.apple.com/?" + q.Encode()
}

func latLng(c domain.Coordinates) string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}
