package metrics

import "time"

// DirectoryMetrics records C3 directory-backend (LDAP) lookups and the
// periodic catalogue sync's pass duration.
type DirectoryMetrics interface {
	ObserveQuery(operation string, duration time.Duration, err error)
	ObserveSync(duration time.Duration, usersSeen, groupsSeen int)
}

func NewDirectoryMetrics() DirectoryMetrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusDirectoryMetrics()
}

var newPrometheusDirectoryMetrics func() DirectoryMetrics

func RegisterDirectoryMetricsConstructor(constructor func() DirectoryMetrics) {
	newPrometheusDirectoryMetrics = constructor
}
