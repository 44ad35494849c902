package cachemanager

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zjrosen/langue/internal/log"
)

// ReadThroughCache loads missing values through fn and stores them. Concurrent
// misses for the same key share a single fn call.
type ReadThroughCache[K ~string, V any, I any] struct {
	cache           CacheManager[K, V]
	fn              func(ctx context.Context, input I) (V, error)
	shouldSkipCache bool
	group           singleflight.Group
}

func NewReadThroughCache[K ~string, V any, I any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, input I) (V, error),
	shouldSkipCache bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		cache:           cache,
		fn:              fn,
		shouldSkipCache: shouldSkipCache,
	}
}

// Get returns the cached value for key, loading it on a miss. Errors are not
// cached.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if r.shouldSkipCache {
		return r.fn(ctx, input)
	}

	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}

	result, err, shared := r.group.Do(string(key), func() (any, error) {
		// a load that finished between the miss above and Do already stored it
		if value, ok := r.cache.Get(ctx, key); ok {
			return value, nil
		}

		value, err := r.fn(ctx, input)
		if err != nil {
			return value, err
		}

		r.cache.Set(ctx, key, value, ttl)

		return value, nil
	})
	if shared {
		log.Debug(log.CatCache, "shared in-flight load", "key", key)
	}

	value, _ := result.(V)

	return value, err
}
