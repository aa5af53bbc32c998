package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every sitetrends metric.
const Namespace = "sitetrends"

// Search backend Prometheus metrics.
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "backend_requests_total",
			Help:      "Total number of search backend requests",
		},
		[]string{"operation", "status"}, // status: "success" / "error" / "rejected"
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Search backend request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	BackendBreakerOpen = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "backend_circuit_open",
			Help:      "1 while the backend circuit breaker is open",
		},
		[]string{"breaker"},
	)
)

// Trending pipeline Prometheus metrics.
var (
	TrendingSkippedRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "trending_skipped_rows_total",
			Help:      "Trending result rows dropped as malformed",
		},
	)

	ActorCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "actor_cache_total",
			Help:      "Actor cache lookups by result",
		},
		[]string{"result"}, // "hit" / "miss" / "bypass"
	)
)

var registerOnce sync.Once

// RegisterDomainMetrics registers the HTTP, backend and pipeline metrics
// on the default registry. Safe to call more than once.
func RegisterDomainMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			httpRequestsInFlight,
			BackendRequestsTotal,
			BackendRequestDuration,
			BackendBreakerOpen,
			TrendingSkippedRowsTotal,
			ActorCacheTotal,
		)
	})
}
