// Package metrics exposes the Prometheus registry shared by all packages.
// Metrics are defined next to the code that drives them (client, cache,
// ratelimit, pagination, etl) and registered via promauto.
//
// A run of the CLI is too short to be scraped, so the collected values are
// written to a file in the text exposition format for the node_exporter
// textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the registerer used by promauto in all packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects the metrics registered with Registry.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// WriteTextfile writes all gathered metrics to path. The file is replaced
// atomically.
func WriteTextfile(path string) error {
	if path == "" {
		return fmt.Errorf("metrics file path is required")
	}
	if err := prometheus.WriteToTextfile(path, Gatherer); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - etl_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - etl_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - etl_request_errors_total{class} (Counter): Errors by class (client, auth, rate_limit, server, network)
//
// Quota Metrics (pkg/ratelimit):
//   - etl_api_quota_remaining (Gauge): Requests remaining in the API quota window
//   - etl_api_quota_blocks_total (Counter): Requests refused locally with a spent quota
//
// Cache Metrics (pkg/cache):
//   - etl_cache_hits_total (Counter): Responses served from Redis
//   - etl_cache_misses_total (Counter): Cache lookups without an entry
//   - etl_cache_errors_total{operation} (Counter): Cache operation errors
//
// Pagination Metrics (pkg/pagination):
//   - etl_pages_fetched_total{resource_id} (Counter): Pages fetched by resource
//   - etl_records_fetched_total{resource_id} (Counter): Records fetched by resource
//
// Job Metrics (pkg/etl):
//   - etl_job_records{job} (Gauge): Records written by the last successful run
//   - etl_job_duration_seconds{job} (Gauge): Duration of the last successful run
//   - etl_job_last_success_timestamp_seconds{job} (Gauge): Time of the last successful run
//   - etl_job_failures_total{job} (Counter): Failed runs
//
// Example Prometheus Queries:
//
//   # Vehicles job older than a day
//   time() - etl_job_last_success_timestamp_seconds{job="vehicles"} > 86400
//
//   # Cache Hit Rate
//   sum(etl_cache_hits_total) / (sum(etl_cache_hits_total) + sum(etl_cache_misses_total))
//
//   # NREL quota nearly spent
//   etl_api_quota_remaining < 100
