package metrics

import "time"

// OrchestratorMetrics records C6/C9 task-orchestrator activity: tick
// cadence, per-kind dispatch outcomes, and task latency.
type OrchestratorMetrics interface {
	ObserveTick(duration time.Duration, tasksProcessed int)
	RecordDispatch(kind string)
	RecordOutcome(kind, outcome string)
	ObserveTaskLatency(kind string, duration time.Duration)
}

// NewOrchestratorMetrics returns the Prometheus-backed implementation, or
// nil if metrics are not enabled.
func NewOrchestratorMetrics() OrchestratorMetrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusOrchestratorMetrics()
}

// newPrometheusOrchestratorMetrics is implemented in
// pkg/metrics/prometheus/orchestrator.go; the indirection avoids an
// import cycle between metrics and metrics/prometheus.
var newPrometheusOrchestratorMetrics func() OrchestratorMetrics

func RegisterOrchestratorMetricsConstructor(constructor func() OrchestratorMetrics) {
	newPrometheusOrchestratorMetrics = constructor
}
