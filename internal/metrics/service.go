package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		LifecycleEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "padel_lifecycle_events_total",
			Help: "Applied match and time-slot request transitions by event type.",
		}, []string{"type"}),
		RejectedCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "padel_rejected_commands_total",
			Help: "API requests rejected by error kind.",
		}, []string{"kind"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "padel_http_request_duration_seconds",
			Help:    "The duration of API requests by route pattern.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_events_published_total",
			Help: "The total number of lifecycle events published to Pub/Sub.",
		}),
		EventsPublishFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_events_publish_failed_total",
			Help: "The total number of lifecycle events that failed to publish.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		ExternalBookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "padel_external_bookings_total",
			Help: "Playtomic bookings seen by the importer by outcome.",
		}, []string{"outcome"}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "padel_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.LifecycleEvents,
		s.RejectedCommands,
		s.RequestDuration,
		s.EventsPublished,
		s.EventsPublishFailed,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.ExternalBookings,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncLifecycleEvent(eventType string) {
	s.LifecycleEvents.WithLabelValues(eventType).Inc()
}

func (s *Service) IncRejectedCommand(kind string) {
	s.RejectedCommands.WithLabelValues(kind).Inc()
}

func (s *Service) ObserveRequestDuration(route string, seconds float64) {
	s.RequestDuration.WithLabelValues(route).Observe(seconds)
}

func (s *Service) IncEventsPublished() {
	s.EventsPublished.Inc()
}

func (s *Service) IncEventsPublishFailed() {
	s.EventsPublishFailed.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) IncExternalBooking(outcome string) {
	s.ExternalBookings.WithLabelValues(outcome).Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
