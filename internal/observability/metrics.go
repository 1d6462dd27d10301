// Package observability holds Prometheus collectors and OpenTelemetry setup
// shared across the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts cache-aside lookups served from Redis.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_cache_hits_total",
		Help: "Number of cache hits by entity.",
	}, []string{"entity"})

	// CacheMisses counts cache-aside lookups that fell through to the database.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_cache_misses_total",
		Help: "Number of cache misses by entity.",
	}, []string{"entity"})

	// RedisErrors counts failed Redis commands. The cache layer fails open,
	// so these do not surface to callers.
	RedisErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_redis_errors_total",
		Help: "Number of Redis command errors.",
	})

	// MailEnqueued counts notification jobs accepted into the outbox.
	MailEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_mail_enqueued_total",
		Help: "Number of notification jobs enqueued for delivery.",
	})

	// MailDelivered counts notification jobs successfully dispatched.
	MailDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_mail_delivered_total",
		Help: "Number of notification jobs delivered to subscribers.",
	})

	// MailDropped counts notification jobs rejected because the outbox was full.
	MailDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_mail_dropped_total",
		Help: "Number of notification jobs dropped due to a full outbox.",
	})

	// SessionsSwept counts expired sessions removed by the lazy sweep.
	SessionsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_sessions_swept_total",
		Help: "Number of expired sessions deleted during sweeps.",
	})

	// DBQueryDuration observes database query latency in seconds.
	DBQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quill_db_query_duration_seconds",
		Help:    "Latency of database queries.",
		Buckets: prometheus.DefBuckets,
	})
)
