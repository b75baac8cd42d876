package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/permflow/engine/pkg/metrics"
)

type orchestratorMetrics struct {
	tickDuration    prometheus.Histogram
	tickTasks       prometheus.Histogram
	dispatches      *prometheus.CounterVec
	outcomes        *prometheus.CounterVec
	taskLatency     *prometheus.HistogramVec
}

func init() {
	metrics.RegisterOrchestratorMetricsConstructor(newOrchestratorMetrics)
}

func newOrchestratorMetrics() metrics.OrchestratorMetrics {
	reg := metrics.GetRegistry()

	return &orchestratorMetrics{
		tickDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "accessreq_orchestrator_tick_duration_seconds",
			Help:    "Duration of a single orchestrator tick",
			Buckets: prometheus.DefBuckets,
		}),
		tickTasks: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "accessreq_orchestrator_tick_tasks",
			Help:    "Number of ready tasks processed per tick",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		dispatches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "accessreq_orchestrator_dispatches_total",
			Help: "Total task dispatches by kind",
		}, []string{"kind"}),
		outcomes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "accessreq_orchestrator_task_outcomes_total",
			Help: "Total task outcomes by kind and outcome (completed, retry, failed)",
		}, []string{"kind", "outcome"}),
		taskLatency: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "accessreq_orchestrator_task_duration_seconds",
			Help:    "Duration from dispatch to terminal outcome by task kind",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}

func (m *orchestratorMetrics) ObserveTick(duration time.Duration, tasksProcessed int) {
	m.tickDuration.Observe(duration.Seconds())
	m.tickTasks.Observe(float64(tasksProcessed))
}

func (m *orchestratorMetrics) RecordDispatch(kind string) {
	m.dispatches.WithLabelValues(kind).Inc()
}

func (m *orchestratorMetrics) RecordOutcome(kind, outcome string) {
	m.outcomes.WithLabelValues(kind, outcome).Inc()
}

func (m *orchestratorMetrics) ObserveTaskLatency(kind string, duration time.Duration) {
	m.taskLatency.WithLabelValues(kind).Observe(duration.Seconds())
}
