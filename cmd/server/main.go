package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-route-service/internal/adapters/cache"
	"itinerary-route-service/internal/adapters/repositories"
	"itinerary-route-service/internal/adapters/routing"
	"itinerary-route-service/internal/api"
	"itinerary-route-service/internal/config"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/db"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"itinerary-route-service/internal/services"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const memoryRouteCacheSize = 1024

// main is the application composition root.
// It wires concrete adapters (Postgres or memory, OSRM, route caches) behind
// ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Opened lazily; only the postgres backend and the SQL cache need it.
	var database *sql.DB
	if cfg.StorageBackend == "postgres" || cfg.RouteCache == "sql" {
		database, err = db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer database.Close()

		if err := repositories.InitSchema(database); err != nil {
			log.Fatal(err)
		}
	}

	reg := prometheus.NewRegistry()
	metrics, err := obs.NewRouteMetrics(reg)
	if err != nil {
		log.Fatal(err)
	}

	osrm, err := routing.NewOSRMProvider(cfg.OSRMBaseURL, cfg.OSRMProfile)
	if err != nil {
		log.Fatal(err)
	}

	routeCache, closeCache, err := newRouteCache(cfg, database)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	var provider ports.RouteProvider = osrm
	if routeCache != nil {
		provider = routing.NewCachedProvider(osrm, routeCache, cfg.OSRMProfile, metrics)
	}

	var repo ports.TripRepository
	switch cfg.StorageBackend {
	case "postgres":
		repo = repositories.NewPostgresTripRepository(database)
	default:
		repo = repositories.NewMemoryTripRepository()
	}

	sessions := services.NewSessions(repo, provider, services.SessionConfig{
		DefaultCenter:  domain.Coordinates{Lat: cfg.DefaultLat, Lon: cfg.DefaultLng},
		RoutingEnabled: cfg.RoutingEnabled,
		Metrics:        metrics,
	})
	defer sessions.Close()

	router := api.NewRouter(sessions, api.RouterOptions{Gatherer: reg})

	// Write timeout leaves room for map requests that wait on a cold route.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server listening addr=:%s storage=%s route_cache=%s osrm=%s", cfg.Port, cfg.StorageBackend, cfg.RouteCache, cfg.OSRMBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown failed: err=%v", err)
	}
}

// newRouteCache builds the configured route cache. A nil cache disables caching.
func newRouteCache(cfg *config.Config, database *sql.DB) (ports.RouteCache, func(), error) {
	noop := func() {}

	switch cfg.RouteCache {
	case "memory":
		return cache.NewMemoryRouteCache(memoryRouteCacheSize, cfg.RouteCacheTTL), noop, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("route cache: ping redis %q: %w", cfg.RedisAddr, err)
		}
		return cache.NewRedisRouteCache(client, cfg.RouteCacheTTL), func() { _ = client.Close() }, nil
	case "sql":
		return cache.NewSQLRouteCache(database, cfg.RouteCacheTTL), noop, nil
	default:
		return nil, noop, nil
	}
}
