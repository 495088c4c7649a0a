package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks fresh entries served by resource
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_cache_hits_total",
			Help: "Total number of collection cache hits",
		},
		[]string{"resource"},
	)

	// CacheMisses tracks missing or stale entries by resource
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_cache_misses_total",
			Help: "Total number of collection cache misses",
		},
		[]string{"resource"},
	)

	// CacheInvalidations tracks explicit invalidations by resource
	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_cache_invalidations_total",
			Help: "Total number of collection cache invalidations",
		},
		[]string{"resource"},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "clear", "decode"
	)
)
