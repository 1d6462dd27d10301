// Package cache provides the Redis client and a cache-aside helper used by
// the repository layer. Every operation fails open: a Redis outage degrades
// to database reads, never to request failures.
package cache

import (
	"context"
	"net"
	"strings"
	"time"

	"quill/internal/middleware"
	"quill/internal/observability"

	"github.com/redis/go-redis/v9"
)

// metricsHook counts Redis command errors without touching latency-sensitive paths.
type metricsHook struct{}

func (metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && err != redis.Nil {
			observability.RedisErrors.Inc()
		}
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

// InitRedis connects to Redis using either a redis:// URL or a host:port
// address. Returns nil when the server is unreachable; callers treat a nil
// client as "cache disabled".
func InitRedis(redisURL string) *redis.Client {
	var opts *redis.Options
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			middleware.Logger.Warn("invalid REDIS_URL, cache disabled", "error", err)
			return nil
		}
		opts = parsed
	} else {
		host, port, err := net.SplitHostPort(redisURL)
		if err != nil {
			host, port = redisURL, "6379"
		}
		opts = &redis.Options{Addr: net.JoinHostPort(host, port)}
	}

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("redis unreachable, cache disabled", "error", err)
		return nil
	}

	middleware.Logger.Info("redis connection established", "addr", opts.Addr)
	return client
}
