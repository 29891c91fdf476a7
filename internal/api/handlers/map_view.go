package handlers

import (
	"itinerary-route-service/internal/api/dto"
	"itinerary-route-service/internal/services"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func mapViewResponse(id string, v services.MapView) dto.MapViewResponse {
	res := dto.MapViewResponse{
		TripID:         id,
		Key:            v.Key,
		Available:      v.Available,
		IsReversed:     v.IsReversed,
		RoutingEnabled: v.RoutingEnabled,
		RoutePending:   v.RoutePending,
		Stops:          make([]dto.StopResponse, 0, len(v.Stops)),
		Polyline:       make([][2]float64, 0, len(v.Polyline)),
		Viewport: dto.ViewportResponse{
			Center: dto.LatLng{Lat: v.Viewport.Center.Lat, Lng: v.Viewport.Center.Lon},
			Zoom:   v.Viewport.Zoom,
		},
		Metrics: dto.MetricsResponse{
			TotalDistanceKm:    v.Metrics.TotalDistanceKm,
			TotalDurationHours: v.Metrics.TotalDurationHours,
			TotalDuration:      v.Metrics.TotalDuration,
			CumulativeKm:       v.Metrics.CumulativeKm,
			Live:               v.Metrics.Live,
		},
		Links: dto.LinksResponse{
			GoogleMaps: v.Links.GoogleMaps,
			Waze:       v.Links.Waze,
			AppleMaps:  v.Links.AppleMaps,
		},
	}

	for _, s := range v.Stops {
		res.Stops = append(res.Stops, dto.StopResponse{
			Lat:        s.Lat,
			Lng:        s.Lon,
			Titulo:     s.Title,
			VisitOrder: s.VisitOrder,
		})
	}
	for _, c := range v.Polyline {
		res.Polyline = append(res.Polyline, [2]float64{c.Lat, c.Lon})
	}

	if v.Route != nil {
		route := &dto.RouteResponse{
			IsFallback: v.Route.IsFallback,
			Legs:       make([]dto.LegResponse, 0, len(v.Route.Legs)),
		}
		for _, l := range v.Route.Legs {
			route.Legs = append(route.Legs, dto.LegResponse{DistanceKm: l.DistanceKm, DurationMinutes: l.DurationMinutes})
		}
		res.Route = route
	}

	return res
}

// mapViewGeoJSON renders the polyline as a LineString feature followed by one
// Point feature per stop. GeoJSON positions are [lon, lat].
func mapViewGeoJSON(v services.MapView) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	var all orb.MultiPoint

	if len(v.Polyline) >= 2 {
		line := make(orb.LineString, 0, len(v.Polyline))
		for _, c := range v.Polyline {
			line = append(line, orb.Point{c.Lon, c.Lat})
		}
		all = append(all, line...)

		f := geojson.NewFeature(line)
		f.Properties["kind"] = "route"
		f.Properties["routed"] = v.Route != nil && !v.Route.IsFallback
		f.Properties["pending"] = v.RoutePending
		if v.Metrics.TotalDistanceKm != nil {
			f.Properties["totalDistanceKm"] = *v.Metrics.TotalDistanceKm
		}
		fc.Append(f)
	}

	for _, s := range v.Stops {
		p := orb.Point{s.Lon, s.Lat}
		all = append(all, p)

		f := geojson.NewFeature(p)
		f.Properties["kind"] = "stop"
		f.Properties["visitOrder"] = s.VisitOrder
		f.Properties["titulo"] = s.Title
		fc.Append(f)
	}

	if len(all) > 0 {
		fc.BBox = geojson.NewBBox(all.Bound())
	}
	fc.ExtraMembers = geojson.Properties{
		"key":        v.Key,
		"isReversed": v.IsReversed,
	}
	return fc
}
