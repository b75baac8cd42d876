package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/permflow/engine/pkg/metrics"
)

type directoryMetrics struct {
	queries      *prometheus.CounterVec
	queryLatency *prometheus.HistogramVec
	syncDuration prometheus.Histogram
	syncUsers    prometheus.Gauge
	syncGroups   prometheus.Gauge
}

func init() {
	metrics.RegisterDirectoryMetricsConstructor(newDirectoryMetrics)
}

func newDirectoryMetrics() metrics.DirectoryMetrics {
	reg := metrics.GetRegistry()

	return &directoryMetrics{
		queries: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "accessreq_directory_queries_total",
			Help: "Total directory-backend queries by operation and status",
		}, []string{"operation", "status"}),
		queryLatency: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "accessreq_directory_query_duration_seconds",
			Help:    "Duration of directory-backend queries by operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		syncDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "accessreq_catalogsync_duration_seconds",
			Help:    "Duration of a full catalogue sync pass",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
		}),
		syncUsers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "accessreq_catalogsync_users",
			Help: "Users seen in the most recent catalogue sync pass",
		}),
		syncGroups: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "accessreq_catalogsync_groups",
			Help: "Groups seen in the most recent catalogue sync pass",
		}),
	}
}

func (m *directoryMetrics) ObserveQuery(operation string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.queries.WithLabelValues(operation, status).Inc()
	m.queryLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *directoryMetrics) ObserveSync(duration time.Duration, usersSeen, groupsSeen int) {
	m.syncDuration.Observe(duration.Seconds())
	m.syncUsers.Set(float64(usersSeen))
	m.syncGroups.Set(float64(groupsSeen))
}
