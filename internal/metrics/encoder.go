package metrics

import "github.com/prometheus/client_golang/prometheus"

// Encoder and search Prometheus metrics.
var (
	EncoderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsdex",
			Name:      "encoder_requests_total",
			Help:      "Total number of encoding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EncoderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newsdex",
			Name:      "encoder_request_duration_seconds",
			Help:      "Encoding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EncoderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsdex",
			Name:      "encoder_tokens_total",
			Help:      "Total encoding tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	EncoderCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsdex",
			Name:      "encoder_cache_total",
			Help:      "Query-vector cache hits and misses",
		},
		[]string{"result"},
	)

	SearchResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsdex",
			Name:      "search_result_cache_total",
			Help:      "Ranked-result cache hits and misses",
		},
		[]string{"result"},
	)

	SearchResultsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "newsdex",
			Name:      "search_results_returned",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	QuotaRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "newsdex",
			Name:      "quota_rejections_total",
			Help:      "Requests rejected by admission control",
		},
	)
)

// RegisterEncoderMetrics registers encoder and search metrics explicitly
// (no init side effects).
func RegisterEncoderMetrics() {
	prometheus.MustRegister(
		EncoderRequestsTotal,
		EncoderRequestDuration,
		EncoderTokensTotal,
		EncoderCacheTotal,
		SearchResultCacheTotal,
		SearchResultsReturned,
		QuotaRejectionsTotal,
	)
}
