package routing

import (
	"context"
	"errors"
	"fmt"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"strconv"
	"strings"
)

// ErrUnusableRoute marks a response that decoded but carries no usable route.
var ErrUnusableRoute = errors.New("unusable route payload")

type routeResponse struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry *struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Legs []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

// Route fetches one road-following route through all waypoints in order.
func (o *OSRMProvider) Route(
	ctx context.Context,
	waypoints []domain.Coordinates,
) (_ ports.ProviderRoute, err error) {
	defer obs.Time(ctx, "osrm.Route")(&err)

	if len(waypoints) < 2 {
		return ports.ProviderRoute{}, fmt.Errorf("osrm route: need at least 2 waypoints, got %d", len(waypoints))
	}

	endpoint := fmt.Sprintf("%s/route/v1/%s/%s", o.baseURL, o.profile, CoordinatePath(waypoints))
	query := map[string]string{
		"overview":   "full",
		"geometries": "geojson",
		"steps":      "false",
	}

	var rr routeResponse
	if err := o.getJSON(ctx, endpoint, query, &rr); err != nil {
		return ports.ProviderRoute{}, fmt.Errorf("osrm route: %w", err)
	}

	return parseRoute(rr)
}

// CoordinatePath renders waypoints as the provider's "lon,lat;lon,lat" path.
// This is the only place the domain lat,lng order is swapped on the way out.
func CoordinatePath(waypoints []domain.Coordinates) string {
	parts := make([]string, 0, len(waypoints))
	for _, c := range waypoints {
		ll := c.LonLat()
		parts = append(parts, strconv.FormatFloat(ll[0], 'f', -1, 64)+","+strconv.FormatFloat(ll[1], 'f', -1, 64))
	}
	return strings.Join(parts, ";")
}

// parseRoute validates the payload and converts [lon, lat] geometry back to
// domain coordinates.
func parseRoute(rr routeResponse) (ports.ProviderRoute, error) {
	status := rr.Code
	if status == "" {
		status = rr.Status
	}
	if status != "Ok" {
		return ports.ProviderRoute{}, fmt.Errorf("%w: status %q", ErrUnusableRoute, status)
	}

	if len(rr.Routes) == 0 {
		return ports.ProviderRoute{}, fmt.Errorf("%w: no routes", ErrUnusableRoute)
	}
	r := rr.Routes[0]

	if r.Geometry == nil || len(r.Geometry.Coordinates) == 0 {
		return ports.ProviderRoute{}, fmt.Errorf("%w: missing geometry", ErrUnusableRoute)
	}

	path := make([]domain.Coordinates, 0, len(r.Geometry.Coordinates))
	for i, p := range r.Geometry.Coordinates {
		c, err := domain.FromLonLat(p)
		if err != nil {
			return ports.ProviderRoute{}, fmt.Errorf("%w: geometry point %d: %v", ErrUnusableRoute, i, err)
		}
		path = append(path, c)
	}

	out := ports.ProviderRoute{
		Path:            path,
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration,
	}
	for _, l := range r.Legs {
		out.Legs = append(out.Legs, ports.ProviderLeg{
			DistanceMeters:  l.Distance,
			DurationSeconds: l.Duration,
		})
	}

	return out, nil
}
