package metrics

import "github.com/prometheus/client_golang/prometheus"

// Reference service and resolver Prometheus metrics.
var (
	ReffRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ctsrange",
			Name:      "reff_requests_total",
			Help:      "Total number of remote reference service requests",
		},
		[]string{"status"}, // "success" / "error" / "breaker_open"
	)

	ReffRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ctsrange",
			Name:      "reff_request_duration_seconds",
			Help:      "Remote reference service request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ReffCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ctsrange",
			Name:      "reff_cache_total",
			Help:      "Shared reference cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	CitationFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ctsrange",
			Name:      "citation_fetches_total",
			Help:      "Child citation fetches issued by the resolver, by depth",
		},
		[]string{"depth", "status"},
	)

	RangeValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ctsrange",
			Name:      "range_validations_total",
			Help:      "Text range validations by outcome",
		},
		[]string{"outcome"}, // "valid" / "invalid" / "shape_error" / "fail_open"
	)
)

var citationMetricsRegistered bool

// RegisterCitationMetrics registers Prometheus resolver metrics. Must be called once from main.
func RegisterCitationMetrics() {
	if citationMetricsRegistered {
		return
	}
	prometheus.MustRegister(ReffRequestsTotal)
	prometheus.MustRegister(ReffRequestDuration)
	prometheus.MustRegister(ReffCacheTotal)
	prometheus.MustRegister(CitationFetchesTotal)
	prometheus.MustRegister(RangeValidationsTotal)
	citationMetricsRegistered = true
}
