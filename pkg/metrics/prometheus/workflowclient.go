package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/permflow/engine/pkg/metrics"
)

type workflowClientMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func init() {
	metrics.RegisterWorkflowClientMetricsConstructor(newWorkflowClientMetrics)
}

func newWorkflowClientMetrics() metrics.WorkflowClientMetrics {
	reg := metrics.GetRegistry()

	return &workflowClientMetrics{
		calls: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "accessreq_workflowclient_calls_total",
			Help: "Total calls to the workflow executor by operation and status",
		}, []string{"operation", "status"}),
		duration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "accessreq_workflowclient_call_duration_seconds",
			Help:    "Duration of workflow executor calls by operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (m *workflowClientMetrics) ObserveCall(operation string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.calls.WithLabelValues(operation, status).Inc()
	m.duration.WithLabelValues(operation).Observe(duration.Seconds())
}
