package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsUpserted tracks the number of stablecoin rows written per ingestion
	RecordsUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stablewatch_records_upserted_total",
		Help: "The total number of stablecoin records upserted",
	})

	// UpdateRuns tracks orchestration runs by outcome
	UpdateRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stablewatch_update_runs_total",
			Help: "The total number of update runs",
		},
		[]string{"status"}, // success, failed, empty
	)

	// UpdateDurationSeconds tracks how long a full update run takes
	UpdateDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stablewatch_update_duration_seconds",
		Help:    "Time taken by a full update run in seconds",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4min
	})

	// SupplyFetches tracks on-chain supply reads by outcome
	SupplyFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stablewatch_supply_fetches_total",
			Help: "The total number of on-chain token supply fetches",
		},
		[]string{"status"}, // success, failed
	)

	// HTTPRequests tracks API requests by route and status code
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stablewatch_http_requests_total",
			Help: "The total number of HTTP requests served",
		},
		[]string{"route", "code"},
	)

	// DashboardCacheHits tracks aggregate cache hits and misses
	DashboardCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stablewatch_dashboard_cache_total",
			Help: "Dashboard aggregate cache lookups",
		},
		[]string{"result"}, // hit, miss
	)
)

// RecordUpdateRun records an update run with the given outcome
func RecordUpdateRun(status string) {
	UpdateRuns.WithLabelValues(status).Inc()
}

// RecordSupplyFetch records an on-chain supply fetch with the given outcome
func RecordSupplyFetch(status string) {
	SupplyFetches.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records a served HTTP request
func RecordHTTPRequest(route, code string) {
	HTTPRequests.WithLabelValues(route, code).Inc()
}
