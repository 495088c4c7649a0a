// Package metrics documents the Prometheus metrics of the dashboard and
// exposes the registry they are registered with. Metrics are defined next to
// the code that updates them (client, pagination, cache, enrich) to avoid
// import cycles.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the dashboard.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - admin_api_requests_total{resource, status} (Counter): Backend requests by resource and HTTP status
//   - admin_api_request_duration_seconds{resource} (Histogram): Request duration by resource
//   - admin_api_errors_total{class} (Counter): Errors by class (client, server, network, decode, unexpected)
//
// Pagination Metrics (pkg/pagination):
//   - admin_pages_fetched_total{resource} (Counter): Pages fetched
//   - admin_fetch_aborted_total{resource} (Counter): Collection fetches aborted by a failed page
//
// Cache Metrics (pkg/cache):
//   - admin_cache_hits_total{resource} (Counter): Fresh collections served from cache
//   - admin_cache_misses_total{resource} (Counter): Missing or stale collections
//   - admin_cache_invalidations_total{resource} (Counter): Explicit invalidations
//   - admin_cache_errors_total{operation} (Counter): Store errors (get, set, delete, clear, decode)
//
// Enrichment Metrics (pkg/enrich):
//   - admin_enrich_units_total{outcome} (Counter): Enrichment units by outcome (ok, failed)
//   - admin_enrich_batch_duration_seconds (Histogram): Duration of enrichment batches
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(admin_cache_hits_total[5m])) /
//   (sum(rate(admin_cache_hits_total[5m])) + sum(rate(admin_cache_misses_total[5m])))
//
//   # Contribution lookup failure ratio
//   rate(admin_enrich_units_total{outcome="failed"}[15m]) / rate(admin_enrich_units_total[15m])
//
//   # Backend Error Rate
//   rate(admin_api_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(admin_api_request_duration_seconds_bucket[5m]))
