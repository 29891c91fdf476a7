package api

import (
	"bytes"
	"context"
	"encoding/json"
	"itinerary-route-service/internal/adapters/repositories"
	"itinerary-route-service/internal/adapters/routing"
	"itinerary-route-service/internal/api/dto"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"itinerary-route-service/internal/services"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	madrid = domain.Coordinates{Lat: 40.4168, Lon: -3.7038}
	toledo = domain.Coordinates{Lat: 39.8628, Lon: -4.0273}
)

func newTestRouter(t *testing.T) (http.Handler, *routing.MockRouteProvider) {
	t.Helper()
	h, provider, _ := newTestRouterWithRepo(t)
	return h, provider
}

func newTestRouterWithRepo(t *testing.T) (http.Handler, *routing.MockRouteProvider, *repositories.MemoryTripRepository) {
	t.Helper()

	reg := prometheus.NewRegistry()
	metrics, err := obs.NewRouteMetrics(reg)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	provider := routing.NewMockRouteProvider()
	provider.Set([]domain.Coordinates{madrid, toledo}, ports.ProviderRoute{
		Path:            []domain.Coordinates{madrid, {Lat: 40.1, Lon: -3.9}, toledo},
		DistanceMeters:  72340,
		DurationSeconds: 3960,
		Legs:            []ports.ProviderLeg{{DistanceMeters: 72340, DurationSeconds: 3960}},
	})

	repo := repositories.NewMemoryTripRepository()
	sessions := services.NewSessions(repo, provider, services.SessionConfig{
		DefaultCenter:  madrid,
		RoutingEnabled: true,
		Metrics:        metrics,
	})
	t.Cleanup(sessions.Close)

	return NewRouter(sessions, RouterOptions{Gatherer: reg}), provider, repo
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) dto.MapViewResponse {
	t.Helper()
	var v dto.MapViewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode view: %v body=%s", err, rec.Body.String())
	}
	return v
}

const twoStops = `{"stops":[{"lat":40.4168,"lng":-3.7038,"titulo":"Madrid"},{"lat":39.8628,"lng":-4.0273,"titulo":"Toledo"}]}`

func createTrip(t *testing.T, h http.Handler, body string) dto.MapViewResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/trips", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body.String())
	}
	return decodeView(t, rec)
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestCreateTripAndWaitForRoute(t *testing.T) {
	h, _ := newTestRouter(t)
	created := createTrip(t, h, twoStops)
	if created.TripID == "" || len(created.Stops) != 2 {
		t.Fatalf("created = %+v", created)
	}

	v := decodeView(t, do(t, h, http.MethodGet, "/trips/"+created.TripID+"/map?wait=1", ""))
	if v.RoutePending || v.Route == nil || v.Route.IsFallback {
		t.Fatalf("route = %+v pending=%v", v.Route, v.RoutePending)
	}
	if len(v.Polyline) != 3 || v.Polyline[0] != [2]float64{madrid.Lat, madrid.Lon} {
		t.Fatalf("polyline = %v", v.Polyline)
	}
	if v.Metrics.TotalDistanceKm == nil || *v.Metrics.TotalDistanceKm != 72.3 {
		t.Fatalf("distance = %v", v.Metrics.TotalDistanceKm)
	}
	if v.Metrics.TotalDuration != "1 h 6 min" {
		t.Fatalf("duration = %q", v.Metrics.TotalDuration)
	}
	if v.Links.GoogleMaps == nil || v.Links.Waze == nil {
		t.Fatalf("links = %+v", v.Links)
	}
}

func TestReverseTrip(t *testing.T) {
	h, provider := newTestRouter(t)
	provider.Fail([]domain.Coordinates{toledo, madrid}, routing.ErrUnusableRoute)
	created := createTrip(t, h, twoStops)

	rec := do(t, h, http.MethodPost, "/trips/"+created.TripID+"/reverse", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reverse status = %d", rec.Code)
	}
	v := decodeView(t, rec)
	if !v.IsReversed || v.Stops[0].Titulo != "Toledo" || v.Stops[0].VisitOrder != 1 {
		t.Fatalf("reversed view = %+v", v.Stops)
	}
	if v.Key == created.Key {
		t.Fatalf("key unchanged after reverse")
	}

	v = decodeView(t, do(t, h, http.MethodGet, "/trips/"+created.TripID+"/map?wait=1", ""))
	if v.Route == nil || !v.Route.IsFallback || len(v.Route.Legs) != 0 {
		t.Fatalf("expected fallback route, got %+v", v.Route)
	}
	if len(v.Polyline) != 2 {
		t.Fatalf("fallback polyline = %v", v.Polyline)
	}
}

func TestPatchTotals(t *testing.T) {
	h, _ := newTestRouter(t)
	created := createTrip(t, h, `{"stops":[{"lat":40.4168,"lng":-3.7038}],"totalDistanciaKm":5,"totalTiempoEstimado":"1.5"}`)
	if created.Metrics.TotalDuration != "1 h 30 min" {
		t.Fatalf("initial duration = %q", created.Metrics.TotalDuration)
	}

	rec := do(t, h, http.MethodPatch, "/trips/"+created.TripID+"/totals", `{"totalTiempoEstimado":null}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d body=%s", rec.Code, rec.Body.String())
	}
	v := decodeView(t, rec)
	if v.Metrics.TotalDurationHours != nil {
		t.Fatalf("duration not cleared: %v", *v.Metrics.TotalDurationHours)
	}
	if v.Metrics.TotalDistanceKm == nil || *v.Metrics.TotalDistanceKm != 5 {
		t.Fatalf("distance should be kept: %v", v.Metrics.TotalDistanceKm)
	}
}

func TestPatchTotalsKeepsStoredLiveTotals(t *testing.T) {
	h, _, repo := newTestRouterWithRepo(t)
	created := createTrip(t, h, twoStops)
	do(t, h, http.MethodGet, "/trips/"+created.TripID+"/map?wait=1", "")

	ctx := context.Background()
	deadline := time.Now().Add(2 * time.Second)
	for {
		rec, err := repo.GetTrip(ctx, created.TripID)
		if err == nil && rec.Fallback.DurationHours != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("live totals were never stored")
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec := do(t, h, http.MethodPatch, "/trips/"+created.TripID+"/totals", `{"totalDistanciaKm":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d body=%s", rec.Code, rec.Body.String())
	}

	stored, err := repo.GetTrip(ctx, created.TripID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Fallback.DistanceKm == nil || *stored.Fallback.DistanceKm != 5 {
		t.Fatalf("stored distance = %v, want 5", stored.Fallback.DistanceKm)
	}
	if stored.Fallback.DurationHours == nil || *stored.Fallback.DurationHours != "1.1" {
		t.Fatalf("stored hours = %v, want 1.1 kept", stored.Fallback.DurationHours)
	}

	// Without a live route the merged totals are what the map shows.
	v := decodeView(t, do(t, h, http.MethodPut, "/trips/"+created.TripID+"/routing", `{"enabled":false}`))
	if v.Metrics.TotalDistanceKm == nil || *v.Metrics.TotalDistanceKm != 5 {
		t.Fatalf("distance = %v", v.Metrics.TotalDistanceKm)
	}
	if v.Metrics.TotalDuration != "1 h 6 min" {
		t.Fatalf("duration = %q", v.Metrics.TotalDuration)
	}
}

func TestRoutingToggleAndValidation(t *testing.T) {
	h, _ := newTestRouter(t)
	created := createTrip(t, h, twoStops)

	if rec := do(t, h, http.MethodPut, "/trips/"+created.TripID+"/routing", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing enabled status = %d", rec.Code)
	}

	v := decodeView(t, do(t, h, http.MethodPut, "/trips/"+created.TripID+"/routing", `{"enabled":false}`))
	if v.RoutingEnabled || v.Route != nil || v.RoutePending {
		t.Fatalf("routing disabled view = %+v", v)
	}
	if len(v.Polyline) != 2 {
		t.Fatalf("straight line expected, got %v", v.Polyline)
	}
}

func TestReplaceStops(t *testing.T) {
	h, _ := newTestRouter(t)
	created := createTrip(t, h, twoStops)

	body := `{"stops":[{"lat":41.3851,"lng":2.1734,"titulo":"Barcelona"},{"lat":"bad"}]}`
	if rec := do(t, h, http.MethodPut, "/trips/"+created.TripID+"/stops", body); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid body status = %d", rec.Code)
	}

	body = `{"stops":[{"lat":41.3851,"lng":2.1734,"titulo":"Barcelona"},{"lng":2.2}]}`
	v := decodeView(t, do(t, h, http.MethodPut, "/trips/"+created.TripID+"/stops", body))
	if len(v.Stops) != 1 || v.Stops[0].Titulo != "Barcelona" {
		t.Fatalf("stops = %+v", v.Stops)
	}
	if v.Viewport.Zoom != 13 || v.Viewport.Center.Lat != 41.3851 {
		t.Fatalf("viewport = %+v", v.Viewport)
	}
}

func TestUnknownTripReturnsErrorEnvelope(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/trips/nope/map", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}

	var res struct {
		Error struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"requestId"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Error.Code != "not_found" || res.Error.RequestID == "" {
		t.Fatalf("error = %+v", res.Error)
	}
}

func TestMapGeoJSON(t *testing.T) {
	h, _ := newTestRouter(t)
	created := createTrip(t, h, twoStops)

	rec := do(t, h, http.MethodGet, "/trips/"+created.TripID+"/map.geojson?wait=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Fatalf("content type = %q", ct)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &fc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 3 {
		t.Fatalf("collection = %+v", fc)
	}
	if fc.Features[0].Geometry.Type != "LineString" || fc.Features[0].Properties["routed"] != true {
		t.Fatalf("route feature = %+v", fc.Features[0])
	}

	var first [2]float64
	if err := json.Unmarshal(fc.Features[1].Geometry.Coordinates, &first); err != nil {
		t.Fatalf("decode point: %v", err)
	}
	if first != [2]float64{madrid.Lon, madrid.Lat} {
		t.Fatalf("point = %v, want lon,lat", first)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestRouter(t)
	created := createTrip(t, h, twoStops)
	do(t, h, http.MethodGet, "/trips/"+created.TripID+"/map?wait=1", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `route_fetches_total{outcome="routed"} 1`) {
		t.Fatalf("metrics = %d %s", rec.Code, rec.Body.String())
	}
}
