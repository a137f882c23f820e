package monitoring

import (
	"fmt"
	"net/http"
	"strconv"

	"playsync/lib/env"
	"playsync/lib/utils/logging"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var logger = logging.NewLogger("MONITORING")

func serveMetrics(port int) {
	http.Handle("/metrics", promhttp.Handler())

	go func() {
		addr := fmt.Sprintf(":%d", port)
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Fatal("PROMETHEUS_SERVER_ERROR", err, nil)
		}
	}()
}

func loadMetricsPort(port string) (int, bool) {
	if metricsPort, err := strconv.Atoi(port); err == nil {
		return metricsPort, true
	} else {
		logger.Warn("INVALID_METRICS_PORT", err, map[string]any{
			"port": port,
		})
		return 0, false
	}
}

// RegisterSyncMetrics registers the sync daemon's metrics and starts the
// metrics server.
func RegisterSyncMetrics() {
	registerSyncMetrics()

	if metricsPort, ok := loadMetricsPort(env.SyncMetricsPort); ok {
		serveMetrics(metricsPort)
	}
}
