package cache

import (
	"context"
	"database/sql"
	"errors"
	"itinerary-route-service/internal/adapters/repositories"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/db"
	"itinerary-route-service/internal/ports"
	"os"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping SQL route cache tests")
	}

	conn, err := db.Open(url)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := repositories.InitSchema(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return conn
}

func TestSQLRouteCacheUpsert(t *testing.T) {
	conn := openTestDB(t)

	c := NewSQLRouteCache(conn, 0)
	ctx := context.Background()
	key := "route:test:2,1;4,3"
	_, _ = conn.ExecContext(ctx, `DELETE FROM route_cache WHERE cache_key = $1`, key)

	if _, err := c.Get(ctx, key); !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}

	path := []domain.Coordinates{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}}
	if err := c.Put(ctx, key, ports.ProviderRoute{Path: path, DistanceMeters: 100}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.Put(ctx, key, ports.ProviderRoute{Path: path, DistanceMeters: 200}); err != nil {
		t.Fatalf("second put: %v", err)
	}

	got, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DistanceMeters != 200 || len(got.Path) != 2 {
		t.Fatalf("got %+v, want upserted route", got)
	}
}

func TestSQLRouteCacheRejectsEmptyKey(t *testing.T) {
	c := NewSQLRouteCache(nil, time.Hour)
	if err := c.Put(context.Background(), "", ports.ProviderRoute{}); err == nil {
		t.Fatalf("expected error for nil db / empty key")
	}
}

func TestSQLRouteCacheExpiresOldEntries(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	key := "route:test:ttl"

	c := NewSQLRouteCache(conn, time.Hour)
	if err := c.Put(ctx, key, ports.ProviderRoute{DistanceMeters: 100}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := c.Get(ctx, key); err != nil {
		t.Fatalf("fresh entry: %v", err)
	}

	if _, err := conn.ExecContext(ctx, `UPDATE route_cache SET updated_at = now() - interval '2 hours' WHERE cache_key = $1`, key); err != nil {
		t.Fatalf("age entry: %v", err)
	}
	if _, err := c.Get(ctx, key); !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss for an entry older than the TTL", err)
	}

	// Without a TTL the same row is still served.
	if _, err := NewSQLRouteCache(conn, 0).Get(ctx, key); err != nil {
		t.Fatalf("no ttl: %v", err)
	}
}
