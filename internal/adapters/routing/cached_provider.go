package routing

import (
	"context"
	"errors"
	"fmt"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"log"
)

// CachedProvider consults a RouteCache before delegating to the network
// provider. Cache failures are logged and never fail the route.
type CachedProvider struct {
	next    ports.RouteProvider
	cache   ports.RouteCache
	profile string
	metrics *obs.RouteMetrics
}

func NewCachedProvider(next ports.RouteProvider, cache ports.RouteCache, profile string, metrics *obs.RouteMetrics) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, profile: profile, metrics: metrics}
}

// CacheKey identifies a route request by profile and ordered waypoints.
func CacheKey(profile string, waypoints []domain.Coordinates) string {
	return "route:" + profile + ":" + CoordinatePath(waypoints)
}

func (c *CachedProvider) Route(ctx context.Context, waypoints []domain.Coordinates) (ports.ProviderRoute, error) {
	key := CacheKey(c.profile, waypoints)

	// Check the cache before issuing external API calls.
	if c.cache != nil {
		route, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			c.metrics.CacheLookup("hit")
			return route, nil
		case errors.Is(err, ports.ErrCacheMiss):
			c.metrics.CacheLookup("miss")
		default:
			c.metrics.CacheLookup("error")
			log.Printf("route cache read failed: %v", err)
		}
	}

	route, err := c.next.Route(ctx, waypoints)
	if err != nil {
		return ports.ProviderRoute{}, fmt.Errorf("cached provider: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, key, route); err != nil {
			log.Printf("route cache write failed: %v", err)
		}
	}

	return route, nil
}
