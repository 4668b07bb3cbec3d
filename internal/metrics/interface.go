package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncLifecycleEvent(eventType string)
	IncRejectedCommand(kind string)
	ObserveRequestDuration(route string, seconds float64)
	IncEventsPublished()
	IncEventsPublishFailed()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	// IncExternalBooking counts imported bookings by outcome
	// (created, existing, conflict, skipped, failed).
	IncExternalBooking(outcome string)
	SetStartupTime(duration float64)
}

// MetricsStore keeps lifetime counters in the database so they survive restarts.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
