package port

import (
	"context"
	"time"
)

// Cache is the key-value contract the messaging core caches derived views
// behind. Implementations must be safe for concurrent use; values are plain
// strings so the port stays free of serialization concerns.
//
// Caches are strictly derived and disposable: wiping every key at any time
// must never produce incorrect behavior, only cache-miss reads.
type Cache interface {
	// Get fetches the value for key, returning ErrMiss when absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key for the given TTL. Zero or negative TTL means
	// no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes the given keys and returns how many were removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Ping verifies connectivity with the cache backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// ErrMiss signals a cache miss in a typed way so callers can distinguish
// misses from transport errors.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
