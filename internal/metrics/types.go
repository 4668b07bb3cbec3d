package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	LifecycleEvents     *prometheus.CounterVec
	RejectedCommands    *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	EventsPublished     prometheus.Counter
	EventsPublishFailed prometheus.Counter
	SlackNotifSent      prometheus.Counter
	SlackNotifFailed    prometheus.Counter
	ExternalBookings    *prometheus.CounterVec
	StartupTimeSeconds  prometheus.Gauge
}
