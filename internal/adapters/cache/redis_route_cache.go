package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRouteCache stores provider routes as JSON values with a TTL.
type RedisRouteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{client: client, ttl: ttl}
}

func (r *RedisRouteCache) Get(ctx context.Context, key string) (_ ports.ProviderRoute, err error) {
	defer obs.Time(ctx, "route.cache.redis.Get")(&err)

	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.ProviderRoute{}, ports.ErrCacheMiss
	}
	if err != nil {
		return ports.ProviderRoute{}, fmt.Errorf("redis route cache get: %w", err)
	}

	var route ports.ProviderRoute
	if err := json.Unmarshal(b, &route); err != nil {
		return ports.ProviderRoute{}, fmt.Errorf("redis route cache get: decode %q: %w", key, err)
	}
	return route, nil
}

func (r *RedisRouteCache) Put(ctx context.Context, key string, route ports.ProviderRoute) error {
	b, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("redis route cache put: encode: %w", err)
	}
	if err := r.client.Set(ctx, key, b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis route cache put: %w", err)
	}
	return nil
}
