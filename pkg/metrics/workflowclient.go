package metrics

import "time"

// WorkflowClientMetrics records C2 calls to the external workflow
// executor: one observation per Submit/Status round trip.
type WorkflowClientMetrics interface {
	ObserveCall(operation string, duration time.Duration, err error)
}

func NewWorkflowClientMetrics() WorkflowClientMetrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusWorkflowClientMetrics()
}

var newPrometheusWorkflowClientMetrics func() WorkflowClientMetrics

func RegisterWorkflowClientMetricsConstructor(constructor func() WorkflowClientMetrics) {
	newPrometheusWorkflowClientMetrics = constructor
}
