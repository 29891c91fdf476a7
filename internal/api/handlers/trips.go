package handlers

import (
	"context"
	"errors"
	"itinerary-route-service/internal/api/dto"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"itinerary-route-service/internal/services"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/nullable"
)

const defaultWaitTimeout = 10 * time.Second

// TripHandler exposes trip composition and the derived map view.
type TripHandler struct {
	Sessions *services.Sessions
	// Upper bound for GET .../map?wait=1; defaults to 10s.
	WaitTimeout time.Duration
}

func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fallback := domain.FallbackTotals{DistanceKm: req.TotalDistanciaKm, DurationHours: req.TotalTiempoEstimado}
	id, e, err := h.Sessions.Create(r.Context(), req.Stops, fallback)
	if err != nil {
		log.Printf("create trip failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	w.Header().Set("Location", "/trips/"+id+"/map")
	writeJSON(w, r, http.StatusCreated, mapViewResponse(id, e.View()))
}

// ReplaceStops swaps in a new raw stop list. Totals in the body, when present,
// replace the fallback totals.
func (h *TripHandler) ReplaceStops(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tripID")

	var req dto.ReplaceStopsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var fallback *domain.FallbackTotals
	if req.TotalDistanciaKm != nil || req.TotalTiempoEstimado != nil {
		fallback = &domain.FallbackTotals{DistanceKm: req.TotalDistanciaKm, DurationHours: req.TotalTiempoEstimado}
	}

	e, err := h.Sessions.ReplaceStops(r.Context(), id, req.Stops, fallback)
	if err != nil {
		h.fail(w, r, "replace stops", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapViewResponse(id, e.View()))
}

func (h *TripHandler) PatchTotals(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tripID")

	var req dto.PatchTotalsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	e, err := h.Sessions.UpdateTotals(r.Context(), id, func(cur domain.FallbackTotals) domain.FallbackTotals {
		cur.DistanceKm = patchValue(req.TotalDistanciaKm, cur.DistanceKm)
		cur.DurationHours = patchValue(req.TotalTiempoEstimado, cur.DurationHours)
		return cur
	})
	if err != nil {
		h.fail(w, r, "patch totals", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapViewResponse(id, e.View()))
}

func (h *TripHandler) SetRouting(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tripID")

	var req dto.RoutingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		writeError(w, r, http.StatusBadRequest, "validation", "enabled is required")
		return
	}

	e, err := h.Sessions.SetRouting(r.Context(), id, *req.Enabled)
	if err != nil {
		h.fail(w, r, "set routing", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapViewResponse(id, e.View()))
}

// Reverse flips the visiting order of the trip.
func (h *TripHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tripID")

	e, err := h.Sessions.Reverse(r.Context(), id)
	if err != nil {
		h.fail(w, r, "reverse trip", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapViewResponse(id, e.View()))
}

// Map returns the current map view. With ?wait=1 it first waits (bounded) for
// the in-flight route request to settle.
func (h *TripHandler) Map(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tripID")

	e, ok := h.engineForView(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, mapViewResponse(id, e.View()))
}

// MapGeoJSON renders the map view as a GeoJSON FeatureCollection.
func (h *TripHandler) MapGeoJSON(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tripID")

	e, ok := h.engineForView(w, r, id)
	if !ok {
		return
	}

	body, err := mapViewGeoJSON(e.View()).MarshalJSON()
	if err != nil {
		log.Printf("encode geojson failed: trip_id=%s err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Printf("write geojson failed: trip_id=%s err=%v", id, err)
	}
}

func (h *TripHandler) engineForView(w http.ResponseWriter, r *http.Request, id string) (*services.Engine, bool) {
	ctx := obs.WithTripID(r.Context(), id)

	e, err := h.Sessions.Engine(ctx, id)
	if err != nil {
		h.fail(w, r, "map view", err)
		return nil, false
	}

	if r.URL.Query().Get("wait") == "1" {
		timeout := h.WaitTimeout
		if timeout <= 0 {
			timeout = defaultWaitTimeout
		}
		waitCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		// On timeout the view is still served, flagged as routePending.
		if err := e.Wait(waitCtx); err != nil {
			log.Printf("map view wait ended early: trip_id=%s err=%v", id, err)
		}
	}
	return e, true
}

func (h *TripHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, ports.ErrTripNotFound) {
		writeError(w, r, http.StatusNotFound, "not_found", "trip not found")
		return
	}
	log.Printf("%s failed: path=%s err=%v", op, r.URL.Path, err)
	writeError(w, r, http.StatusInternalServerError, "internal", "internal server error")
}

// patchValue applies a nullable patch field: unspecified keeps cur, null clears.
func patchValue[T any](n nullable.Nullable[T], cur *T) *T {
	if !n.IsSpecified() {
		return cur
	}
	if n.IsNull() {
		return nil
	}
	v, err := n.Get()
	if err != nil {
		return cur
	}
	return &v
}
