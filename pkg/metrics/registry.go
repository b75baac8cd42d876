// Package metrics exposes the process's Prometheus registry plus a set of
// nil-safe facade types for each subsystem that wants to record
// observations. Callers construct a subsystem's metrics with its
// New*Metrics function; until InitRegistry has run that constructor
// returns nil. The facades are interfaces, so a nil one must not be
// called: every collaborator checks its facade for nil before recording,
// and pays nothing when metrics are disabled.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates the process-wide registry and registers the Go
// runtime and process collectors. Must be called before any New*Metrics
// constructor for those constructors to return working implementations;
// calling it more than once replaces the registry (used by tests that
// want an isolated one per test).
func InitRegistry() {
	mu.Lock()
	defer mu.Unlock()

	registry = prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IsEnabled reports whether InitRegistry has run.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry != nil
}

// GetRegistry returns the process registry. Panics if InitRegistry has not
// run; callers should always check IsEnabled (or go through a New*Metrics
// constructor, which does this for them) first.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	if registry == nil {
		panic("metrics: GetRegistry called before InitRegistry")
	}
	return registry
}

// Handler returns the /metrics HTTP handler for the current registry, or
// nil if metrics are disabled.
func Handler() http.Handler {
	if !IsEnabled() {
		return nil
	}
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
