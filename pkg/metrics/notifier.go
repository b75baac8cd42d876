package metrics

// NotifierMetrics records C4 admin-notification delivery: a sent or
// delivery-error count for each channel an emitted notification goes to,
// and a suppressed count for each Notify call that the cooldown or a
// resolved record holds back.
type NotifierMetrics interface {
	RecordSent(channel string)
	RecordSuppressed(fingerprint string)
	RecordDeliveryError(channel string)
}

func NewNotifierMetrics() NotifierMetrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusNotifierMetrics()
}

var newPrometheusNotifierMetrics func() NotifierMetrics

func RegisterNotifierMetricsConstructor(constructor func() NotifierMetrics) {
	newPrometheusNotifierMetrics = constructor
}
