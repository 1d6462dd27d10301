package cache

import (
	"context"
	"encoding/json"
	"time"

	"quill/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Aside implements the cache-aside pattern: try Redis first, fall back to
// fetch on miss and populate the key with the given TTL. A nil client or any
// Redis error degrades to a plain fetch.
func Aside[T any](ctx context.Context, rdb *redis.Client, key, entity string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	if rdb != nil {
		raw, err := rdb.Get(ctx, key).Result()
		if err == nil {
			var cached T
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				observability.CacheHits.WithLabelValues(entity).Inc()
				return cached, nil
			}
			// Corrupt payload, drop it and fall through.
			rdb.Del(ctx, key)
		}
		observability.CacheMisses.WithLabelValues(entity).Inc()
	}

	value, err := fetch()
	if err != nil {
		return value, err
	}

	if rdb != nil {
		if raw, err := json.Marshal(value); err == nil {
			rdb.Set(ctx, key, raw, ttl)
		}
	}

	return value, nil
}

// Invalidate removes the given keys. Safe on a nil client.
func Invalidate(ctx context.Context, rdb *redis.Client, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	rdb.Del(ctx, keys...)
}
