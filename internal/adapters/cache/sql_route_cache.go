package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"strings"
	"time"
)

// SQLRouteCache is a SQL-backed cache for provider routes keyed by waypoint path.
type SQLRouteCache struct {
	DB *sql.DB
	// Entries older than TTL are misses; zero keeps them forever.
	TTL time.Duration
}

func NewSQLRouteCache(db *sql.DB, ttl time.Duration) *SQLRouteCache {
	return &SQLRouteCache{DB: db, TTL: ttl}
}

// Fetch the cached route for key, unless it has outlived the TTL.
func (s *SQLRouteCache) Get(ctx context.Context, key string) (_ ports.ProviderRoute, err error) {
	defer obs.Time(ctx, "route.cache.sql.Get")(&err)

	if s.DB == nil {
		return ports.ProviderRoute{}, errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return ports.ProviderRoute{}, errors.New("get route cache: key must not be empty")
	}

	q := `
	SELECT payload
    FROM route_cache
    WHERE cache_key = $1
      AND ($2::bigint <= 0 OR updated_at > now() - $2::bigint * interval '1 millisecond');
	`

	var payload []byte
	err = s.DB.QueryRowContext(ctx, q, key, s.TTL.Milliseconds()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ProviderRoute{}, ports.ErrCacheMiss
	}
	if err != nil {
		return ports.ProviderRoute{}, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	var route ports.ProviderRoute
	if err := json.Unmarshal(payload, &route); err != nil {
		return ports.ProviderRoute{}, fmt.Errorf("get route cache: decode payload: %w", err)
	}

	return route, nil
}

// Store a route under key, replacing any previous entry.
func (s *SQLRouteCache) Put(ctx context.Context, key string, route ports.ProviderRoute) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	payload, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("insert route cache: encode payload: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO route_cache (cache_key, payload, updated_at)
    VALUES ($1, $2, now())
	ON CONFLICT (cache_key) DO UPDATE
	SET payload = EXCLUDED.payload,
		updated_at = EXCLUDED.updated_at;
	`, key, payload)
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	return nil
}
