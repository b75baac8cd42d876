package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/permflow/engine/pkg/metrics"
)

type requestMetrics struct {
	submitted *prometheus.CounterVec
	decisions *prometheus.CounterVec
}

func init() {
	metrics.RegisterRequestMetricsConstructor(newRequestMetrics)
}

func newRequestMetrics() metrics.RequestMetrics {
	reg := metrics.GetRegistry()

	return &requestMetrics{
		submitted: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "accessreq_requests_submitted_total",
			Help: "Total permission requests submitted by mode",
		}, []string{"mode"}),
		decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "accessreq_requests_decisions_total",
			Help: "Total terminal request decisions by outcome",
		}, []string{"decision"}),
	}
}

func (m *requestMetrics) RecordSubmitted(mode string) {
	m.submitted.WithLabelValues(mode).Inc()
}

func (m *requestMetrics) RecordDecision(decision string) {
	m.decisions.WithLabelValues(decision).Inc()
}
