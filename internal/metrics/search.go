package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and store Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pocketnavi",
			Name:      "search_requests_total",
			Help:      "Searches by the path that produced the response",
		},
		[]string{"path"}, // empty/ranked/match/fallback/and/failed
	)

	SearchFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pocketnavi",
			Name:      "search_fallback_total",
			Help:      "Fallback chain activations by failure kind",
		},
		[]string{"reason"},
	)

	SearchPartialTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pocketnavi",
			Name:      "search_partial_total",
			Help:      "Searches cut short by the time budget",
		},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pocketnavi",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"path"},
	)

	StoreCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pocketnavi",
			Name:      "store_call_duration_seconds",
			Help:      "Record store call duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend", "op", "status"},
	)

	CatalogCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pocketnavi",
			Name:      "catalog_cache_total",
			Help:      "Slug cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the search, store and cache metrics.
// Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchFallbackTotal)
	prometheus.MustRegister(SearchPartialTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(StoreCallDuration)
	prometheus.MustRegister(CatalogCacheTotal)
	searchMetricsRegistered = true
}
