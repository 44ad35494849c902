package cachemanager

import (
	"context"
	"time"
)

// CacheManager stores values by key with a per-entry ttl.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Keys(ctx context.Context) []K
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
