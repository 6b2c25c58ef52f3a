package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ProbeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pimon_probe_failures_total",
			Help: "Total number of probe reads that fell back to their default value",
		},
		[]string{"probe"},
	)

	RefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pimon_snapshot_refresh_duration_seconds",
			Help:    "Wall-clock duration of a full stats refresh cycle",
			Buckets: prometheus.DefBuckets,
		},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pimon_snapshot_cache_hits_total",
			Help: "Total number of snapshot requests served from the cache",
		},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pimon_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status"},
	)
)

// Register registers all collectors with the default registry. Call once at
// process start.
func Register() {
	prometheus.MustRegister(
		ProbeFailures,
		RefreshDuration,
		CacheHits,
		HTTPRequests,
	)
}

// Handler returns the Prometheus exposition handler
func Handler() http.Handler {
	return promhttp.Handler()
}
