package dto

import (
	"itinerary-route-service/internal/domain"

	"github.com/oapi-codegen/nullable"
)

// Stops keep the field names of the upstream itinerary records
// (lat, lng, titulo, orden).
type CreateTripRequest struct {
	Stops               []domain.RawStop `json:"stops"`
	TotalDistanciaKm    *float64         `json:"totalDistanciaKm"`
	TotalTiempoEstimado *string          `json:"totalTiempoEstimado"`
}

type ReplaceStopsRequest struct {
	Stops               []domain.RawStop `json:"stops"`
	TotalDistanciaKm    *float64         `json:"totalDistanciaKm"`
	TotalTiempoEstimado *string          `json:"totalTiempoEstimado"`
}

// Absent fields are left unchanged; explicit nulls clear them.
type PatchTotalsRequest struct {
	TotalDistanciaKm    nullable.Nullable[float64] `json:"totalDistanciaKm"`
	TotalTiempoEstimado nullable.Nullable[string]  `json:"totalTiempoEstimado"`
}

type RoutingRequest struct {
	Enabled *bool `json:"enabled"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type StopResponse struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Titulo     string  `json:"titulo"`
	VisitOrder int     `json:"visitOrder"`
}

type LegResponse struct {
	DistanceKm      float64 `json:"distanceKm"`
	DurationMinutes int     `json:"durationMinutes"`
}

type RouteResponse struct {
	IsFallback bool          `json:"isFallback"`
	Legs       []LegResponse `json:"legs"`
}

type ViewportResponse struct {
	Center LatLng `json:"center"`
	Zoom   int    `json:"zoom"`
}

type MetricsResponse struct {
	TotalDistanceKm    *float64  `json:"totalDistanceKm"`
	TotalDurationHours *float64  `json:"totalDurationHours"`
	TotalDuration      string    `json:"totalDuration,omitempty"`
	CumulativeKm       []float64 `json:"cumulativeKm"`
	Live               bool      `json:"live"`
}

type LinksResponse struct {
	GoogleMaps *string `json:"googleMaps"`
	Waze       *string `json:"waze"`
	AppleMaps  *string `json:"appleMaps"`
}

type MapViewResponse struct {
	TripID         string           `json:"tripId"`
	Key            string           `json:"key"`
	Available      bool             `json:"available"`
	IsReversed     bool             `json:"isReversed"`
	RoutingEnabled bool             `json:"routingEnabled"`
	RoutePending   bool             `json:"routePending"`
	Stops          []StopResponse   `json:"stops"`
	Polyline       [][2]float64     `json:"polyline"`
	Route          *RouteResponse   `json:"route"`
	Viewport       ViewportResponse `json:"viewport"`
	Metrics        MetricsResponse  `json:"metrics"`
	Links          LinksResponse    `json:"links"`
}

type ErrorBody struct {
	Code      string                    `json:"code"`
	Message   string                    `json:"message"`
	RequestID nullable.Nullable[string] `json:"requestId,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}
