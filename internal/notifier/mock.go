package notifier

import "sync"

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies; a nil func means success.
	SendMatchOrganizingFunc func(a Announcement, dryRun bool) error
	SendMatchConfirmedFunc  func(a Announcement, dryRun bool) error
	SendCourtBookedFunc     func(a Announcement, dryRun bool) error
	SendMatchCancelledFunc  func(a Announcement, dryRun bool) error

	// Call records
	SendMatchOrganizingCalls []Announcement
	SendMatchConfirmedCalls  []Announcement
	SendCourtBookedCalls     []Announcement
	SendMatchCancelledCalls  []Announcement
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchOrganizingCalls = nil
	m.SendMatchConfirmedCalls = nil
	m.SendCourtBookedCalls = nil
	m.SendMatchCancelledCalls = nil
}

func (m *Mock) SendMatchOrganizing(a Announcement, dryRun bool) error {
	m.mu.Lock()
	m.SendMatchOrganizingCalls = append(m.SendMatchOrganizingCalls, a)
	m.mu.Unlock()
	if m.SendMatchOrganizingFunc != nil {
		return m.SendMatchOrganizingFunc(a, dryRun)
	}
	return nil
}

func (m *Mock) SendMatchConfirmed(a Announcement, dryRun bool) error {
	m.mu.Lock()
	m.SendMatchConfirmedCalls = append(m.SendMatchConfirmedCalls, a)
	m.mu.Unlock()
	if m.SendMatchConfirmedFunc != nil {
		return m.SendMatchConfirmedFunc(a, dryRun)
	}
	return nil
}

func (m *Mock) SendCourtBooked(a Announcement, dryRun bool) error {
	m.mu.Lock()
	m.SendCourtBookedCalls = append(m.SendCourtBookedCalls, a)
	m.mu.Unlock()
	if m.SendCourtBookedFunc != nil {
		return m.SendCourtBookedFunc(a, dryRun)
	}
	return nil
}

func (m *Mock) SendMatchCancelled(a Announcement, dryRun bool) error {
	m.mu.Lock()
	m.SendMatchCancelledCalls = append(m.SendMatchCancelledCalls, a)
	m.mu.Unlock()
	if m.SendMatchCancelledFunc != nil {
		return m.SendMatchCancelledFunc(a, dryRun)
	}
	return nil
}

// Calls returns the number of announcements sent through any method.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendMatchOrganizingCalls) + len(m.SendMatchConfirmedCalls) + len(m.SendCourtBookedCalls) + len(m.SendMatchCancelledCalls)
}
