package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service settings read from the environment.
type Config struct {
	Port           string
	DatabaseURL    string
	StorageBackend string // memory | postgres
	RouteCache     string // none | memory | redis | sql
	RouteCacheTTL  time.Duration
	RedisAddr      string
	OSRMBaseURL    string
	OSRMProfile    string
	RoutingEnabled bool
	DefaultLat     float64
	DefaultLng     float64
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := &Config{
		Port:           Get("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		StorageBackend: Get("STORAGE_BACKEND", "memory"),
		RouteCache:     Get("ROUTE_CACHE", "memory"),
		RedisAddr:      Get("REDIS_ADDR", "localhost:6379"),
		OSRMBaseURL:    Get("OSRM_BASE_URL", "https://router.project-osrm.org"),
		OSRMProfile:    Get("OSRM_PROFILE", "driving"),
	}

	var err error
	if cfg.RoutingEnabled, err = getBool("ROUTING_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.RouteCacheTTL, err = getDuration("ROUTE_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	// Continental fallback center (Iberian peninsula).
	if cfg.DefaultLat, err = getFloat("MAP_DEFAULT_LAT", 40.4168); err != nil {
		return nil, err
	}
	if cfg.DefaultLng, err = getFloat("MAP_DEFAULT_LNG", -3.7038); err != nil {
		return nil, err
	}

	switch cfg.StorageBackend {
	case "memory":
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, fmt.Errorf("config: DATABASE_URL is required for STORAGE_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("config: unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	switch cfg.RouteCache {
	case "none", "memory", "redis":
	case "sql":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, fmt.Errorf("config: DATABASE_URL is required for ROUTE_CACHE=sql")
		}
	default:
		return nil, fmt.Errorf("config: unknown ROUTE_CACHE %q", cfg.RouteCache)
	}

	return cfg, nil
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return b, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return d, nil
}
