package metrics

import "github.com/prometheus/client_golang/prometheus"

// Place resolution, upstream, search and recorder metrics.
var (
	// ResolveTotal counts resolutions by terminal state: fresh, refreshed, degraded, error.
	ResolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_total",
			Help:      "Place resolutions by outcome",
		},
		[]string{"outcome"},
	)

	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Place details requests to the upstream provider",
		},
		[]string{"status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream place details latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)

	NearbySearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "nearby_search_duration_seconds",
			Help:      "Nearby search latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	NearbyCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "nearby_candidates",
			Help:      "Geo index candidates loaded per nearby search",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	ViewRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_records_total",
			Help:      "Best-effort view recordings by result",
		},
		[]string{"result"}, // "ok" / "error"
	)
)

var placeMetricsRegistered bool

// RegisterPlaceMetrics registers the place metrics. Must be called once from main.
func RegisterPlaceMetrics() {
	if placeMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		ResolveTotal,
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		NearbySearchDuration,
		NearbyCandidates,
		ViewRecordsTotal,
	)
	placeMetricsRegistered = true
}
