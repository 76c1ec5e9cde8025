package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry *prometheus.Registry

	// Upstream API call rate per endpoint. Watch for: error vs success ratio.
	UpstreamRequestsTotal *prometheus.CounterVec

	// Upstream API latency per request.
	UpstreamRequestDuration *prometheus.HistogramVec

	// Response cache hits per backend. Hit rate = hits/(hits+misses).
	CacheHitsTotal *prometheus.CounterVec

	// Response cache misses per backend.
	CacheMissesTotal *prometheus.CounterVec

	// Cache operation failures. Cache errors are advisory, never fatal.
	CacheErrorsTotal *prometheus.CounterVec
)

func init() {
	registry = prometheus.NewRegistry()

	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamRequestsTotal",
			Help: "Total number of upstream API calls",
		},
		[]string{"endpoint", "status"},
	)
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstreamRequestDurationSeconds",
			Help:    "Upstream API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheHitsTotal",
			Help: "Total number of response cache hits",
		},
		[]string{"backend"},
	)
	CacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheMissesTotal",
			Help: "Total number of response cache misses",
		},
		[]string{"backend"},
	)
	CacheErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheErrorsTotal",
			Help: "Total number of cache operation errors (get/set)",
		},
		[]string{"op"},
	)

	registry.MustRegister(
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		CacheHitsTotal,
		CacheMissesTotal,
		CacheErrorsTotal,
	)
}

// Registry returns the process-local metrics registry. The CLI exposes no
// scrape endpoint; the registry is gathered once at exit (see LogSnapshot).
func Registry() *prometheus.Registry {
	return registry
}

// StatusLabel maps an HTTP status code to a stable metric label.
func StatusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
