package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"backchat/internal/infrastructure/cache/port"
)

// ViewStore wraps the cache port with JSON serialization and the degrade
// contract: any cache failure falls back to a store read, never an error.
type ViewStore struct {
	cache port.Cache
	log   *zap.Logger
}

func NewViewStore(cache port.Cache, log *zap.Logger) *ViewStore {
	return &ViewStore{cache: cache, log: log}
}

// Get unmarshals the cached value into dest and reports whether it hit.
// Transport errors and corrupt entries count as misses and are logged.
func (s *ViewStore) Get(ctx context.Context, key string, dest any) bool {
	if s == nil || s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if errors.Is(err, port.ErrMiss) {
		return false
	}
	if err != nil {
		s.log.Warn("cache read failed, falling back to store", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.log.Warn("cache entry corrupt, falling back to store", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Put stores v at key best-effort; failures are logged and swallowed since
// caches are idempotent to recompute.
func (s *ViewStore) Put(ctx context.Context, key string, v any, ttl time.Duration) {
	if s == nil || s.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("cache value not serializable", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(b), ttl); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
