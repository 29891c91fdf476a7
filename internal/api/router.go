package api

import (
	"itinerary-route-service/internal/api/handlers"
	"itinerary-route-service/internal/services"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterOptions struct {
	// Source for GET /metrics; the default Prometheus registry when nil.
	Gatherer prometheus.Gatherer
	// Upper bound for map requests that wait for a route to settle.
	WaitTimeout time.Duration
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(sessions *services.Sessions, opts RouterOptions) http.Handler {
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	trips := &handlers.TripHandler{Sessions: sessions, WaitTimeout: opts.WaitTimeout}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", handlers.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", trips.Create)
		r.Route("/{tripID}", func(r chi.Router) {
			r.Put("/stops", trips.ReplaceStops)
			r.Patch("/totals", trips.PatchTotals)
			r.Put("/routing", trips.SetRouting)
			r.Post("/reverse", trips.Reverse)
			r.Get("/map", trips.Map)
			r.Get("/map.geojson", trips.MapGeoJSON)
		})
	})

	return r
}
