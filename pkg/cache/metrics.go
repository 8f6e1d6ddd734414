package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts responses served from Redis.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_cache_hits_total",
			Help: "Total number of API responses served from cache",
		},
	)

	// CacheMisses counts lookups that had to go to the network.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// CacheErrors counts Redis failures by operation.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
