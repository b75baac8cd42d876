package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/permflow/engine/pkg/metrics"
)

type notifierMetrics struct {
	sent       *prometheus.CounterVec
	suppressed prometheus.Counter
	errors     *prometheus.CounterVec
}

func init() {
	metrics.RegisterNotifierMetricsConstructor(newNotifierMetrics)
}

func newNotifierMetrics() metrics.NotifierMetrics {
	reg := metrics.GetRegistry()

	return &notifierMetrics{
		sent: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "accessreq_notifier_sent_total",
			Help: "Total admin notifications sent by channel",
		}, []string{"channel"}),
		suppressed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "accessreq_notifier_suppressed_total",
			Help: "Total admin notifications suppressed by the per-fingerprint cooldown",
		}),
		errors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "accessreq_notifier_delivery_errors_total",
			Help: "Total notification delivery errors by channel",
		}, []string{"channel"}),
	}
}

func (m *notifierMetrics) RecordSent(channel string) {
	m.sent.WithLabelValues(channel).Inc()
}

func (m *notifierMetrics) RecordSuppressed(string) {
	m.suppressed.Inc()
}

func (m *notifierMetrics) RecordDeliveryError(channel string) {
	m.errors.WithLabelValues(channel).Inc()
}
