package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Track terminated sync passes by resource and terminal status
// (success, failure, cancelled)
var PassStatus = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "play_sync_pass_status",
	},
	[]string{"resource", "status"},
)

// Track remote pages fetched and persisted per resource
var PagesFetched = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "play_sync_pages_fetched",
	},
	[]string{"resource"},
)

var PassDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "play_sync_pass_duration",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	},
)

// SyncInProgress is the user-visible in-progress indicator: the number of
// in-flight passes for an account. Zeroed on cancellation.
var SyncInProgress = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "sync_in_progress",
		Help: "Number of in-flight sync passes per account",
	},
	[]string{"account"},
)

func registerSyncMetrics() {
	prometheus.MustRegister(PassStatus)
	prometheus.MustRegister(PagesFetched)
	prometheus.MustRegister(PassDuration)
	prometheus.MustRegister(SyncInProgress)
}
