package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	lifecycleEvents     map[string]int
	rejectedCommands    map[string]int
	requestDurations    map[string][]float64
	eventsPublished     int
	eventsPublishFailed int
	slackNotifSent      int
	slackNotifFailed    int
	externalBookings    map[string]int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		lifecycleEvents:  make(map[string]int),
		rejectedCommands: make(map[string]int),
		requestDurations: make(map[string][]float64),
		externalBookings: make(map[string]int),
	}
}

func (m *Mock) IncLifecycleEvent(eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lifecycleEvents[eventType]++
}

func (m *Mock) IncRejectedCommand(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejectedCommands[kind]++
}

func (m *Mock) ObserveRequestDuration(route string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestDurations[route] = append(m.requestDurations[route], seconds)
}

func (m *Mock) IncEventsPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsPublished++
}

func (m *Mock) IncEventsPublishFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsPublishFailed++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) IncExternalBooking(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.externalBookings[outcome]++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// LifecycleEvents returns how often IncLifecycleEvent was called for eventType.
func (m *Mock) LifecycleEvents(eventType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lifecycleEvents[eventType]
}

// RejectedCommands returns how often IncRejectedCommand was called for kind.
func (m *Mock) RejectedCommands(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rejectedCommands[kind]
}

// RequestCount returns the number of durations observed for route.
func (m *Mock) RequestCount(route string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requestDurations[route])
}

// EventsPublished returns the number of times IncEventsPublished was called.
func (m *Mock) EventsPublished() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsPublished
}

// EventsPublishFailed returns the number of times IncEventsPublishFailed was called.
func (m *Mock) EventsPublishFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsPublishFailed
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

// ExternalBookings returns how often IncExternalBooking was called for outcome.
func (m *Mock) ExternalBookings(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.externalBookings[outcome]
}
