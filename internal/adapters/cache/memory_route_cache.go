package cache

import (
	"context"
	"errors"
	"fmt"
	"itinerary-route-service/internal/ports"
	"time"

	"github.com/bluele/gcache"
)

// MemoryRouteCache is an in-process LRU cache of provider routes with expiry.
type MemoryRouteCache struct {
	c gcache.Cache
}

func NewMemoryRouteCache(size int, ttl time.Duration) *MemoryRouteCache {
	b := gcache.New(size).LRU()
	if ttl > 0 {
		b = b.Expiration(ttl)
	}
	return &MemoryRouteCache{c: b.Build()}
}

func (m *MemoryRouteCache) Get(ctx context.Context, key string) (ports.ProviderRoute, error) {
	v, err := m.c.Get(key)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return ports.ProviderRoute{}, ports.ErrCacheMiss
	}
	if err != nil {
		return ports.ProviderRoute{}, fmt.Errorf("memory route cache get: %w", err)
	}

	route, ok := v.(ports.ProviderRoute)
	if !ok {
		return ports.ProviderRoute{}, fmt.Errorf("memory route cache get: unexpected value type %T", v)
	}
	return route, nil
}

func (m *MemoryRouteCache) Put(ctx context.Context, key string, route ports.ProviderRoute) error {
	if err := m.c.Set(key, route); err != nil {
		return fmt.Errorf("memory route cache put: %w", err)
	}
	return nil
}
