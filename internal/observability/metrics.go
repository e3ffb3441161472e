// Package observability provides metrics and tracing.
package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "folio_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthLogins counts login attempts by method (password, google) and outcome.
	AuthLogins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_auth_logins_total",
		Help: "Total number of login attempts by method and outcome",
	}, []string{"method", "outcome"})

	// PostViews counts post reads that incremented a view counter.
	PostViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "folio_post_views_total",
		Help: "Total number of counted post views",
	})

	// CacheLookups counts cache-aside lookups by key prefix and result (hit, miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_cache_lookups_total",
		Help: "Total number of cache lookups by prefix and result",
	}, []string{"prefix", "result"})
)

// Login outcomes recorded on AuthLogins.
const (
	OutcomeSuccess      = "success"
	OutcomeNotFound     = "not_found"
	OutcomeForbidden    = "forbidden"
	OutcomeUnauthorized = "unauthorized"
	OutcomeError        = "error"
)

const startTimeKey = "folio:query_start"

// RegisterGormCallbacks records DatabaseQueryLatency for every GORM operation on db.
func RegisterGormCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("folio:metrics:before_create", markQueryStart),
		cb.Create().After("gorm:create").Register("folio:metrics:after_create", observeQuery("create")),
		cb.Query().Before("gorm:query").Register("folio:metrics:before_query", markQueryStart),
		cb.Query().After("gorm:query").Register("folio:metrics:after_query", observeQuery("query")),
		cb.Update().Before("gorm:update").Register("folio:metrics:before_update", markQueryStart),
		cb.Update().After("gorm:update").Register("folio:metrics:after_update", observeQuery("update")),
		cb.Delete().Before("gorm:delete").Register("folio:metrics:before_delete", markQueryStart),
		cb.Delete().After("gorm:delete").Register("folio:metrics:after_delete", observeQuery("delete")),
		cb.Row().Before("gorm:row").Register("folio:metrics:before_row", markQueryStart),
		cb.Row().After("gorm:row").Register("folio:metrics:after_row", observeQuery("row")),
		cb.Raw().Before("gorm:raw").Register("folio:metrics:before_raw", markQueryStart),
		cb.Raw().After("gorm:raw").Register("folio:metrics:after_raw", observeQuery("raw")),
	)
}

func markQueryStart(tx *gorm.DB) {
	tx.InstanceSet(startTimeKey, time.Now())
}

func observeQuery(operation string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(startTimeKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		table := tx.Statement.Table
		if table == "" {
			table = "unknown"
		}
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordLogin increments AuthLogins for method and outcome.
func RecordLogin(method, outcome string) {
	AuthLogins.WithLabelValues(method, outcome).Inc()
}
