package ports

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by RouteCache.Get when no entry exists.
var ErrCacheMiss = errors.New("route cache: miss")

// Storage for provider routes keyed by the ordered waypoint path.
type RouteCache interface {
	Get(ctx context.Context, key string) (ProviderRoute, error)
	Put(ctx context.Context, key string, route ProviderRoute) error
}
