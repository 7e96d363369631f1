// Package metrics holds the Prometheus collectors for Graph API calls and
// sync pipelines.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GraphRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "facebook_graph_request_duration_seconds",
			Help:    "Duration of Facebook Graph API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"}, // "connection", "object"
	)

	GraphRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facebook_graph_request_errors_total",
			Help: "Total number of failed Facebook Graph API requests",
		},
		[]string{"kind", "code"},
	)

	SyncOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metrilive_sync_operations_total",
			Help: "Total number of sync pipeline runs by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	SyncFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "metrilive_sync_page_fallbacks_total",
			Help: "Times the account listing fell back to the token's own page object",
		},
	)

	MetricSnapshots = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "metrilive_metric_snapshots_total",
			Help: "Total number of video metric snapshots appended",
		},
	)
)

// RecordGraphRequest observes one Graph API call.
func RecordGraphRequest(kind string, started time.Time) {
	GraphRequestDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// RecordSync counts a finished sync pipeline.
func RecordSync(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	SyncOperations.WithLabelValues(operation, outcome).Inc()
}
