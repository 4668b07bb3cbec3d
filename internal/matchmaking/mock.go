package matchmaking

import (
	"context"
	"sync"
)

// MockService is a mock implementation of Service for testing. Methods with
// no Func set return zero values. It is safe for concurrent use.
type MockService struct {
	mu sync.Mutex

	CreateMatchAndInviteFunc     func(ctx context.Context, params CreateMatchParams) (*Match, error)
	InvitePlayersToMatchFunc     func(ctx context.Context, matchID string, playerIDs []string) (*Match, error)
	RespondToInvitationFunc      func(ctx context.Context, matchID, playerID string, response Response) (*Match, error)
	BookCourtFunc                func(ctx context.Context, courtID, date, time, playerID string) (*Match, error)
	CancelMatchFunc              func(ctx context.Context, matchID string, actor Actor) (*Match, error)
	MirrorExternalBookingFunc    func(ctx context.Context, booking ExternalBooking) (*Match, bool, error)
	GetMatchFunc                 func(ctx context.Context, matchID string) (*Match, error)
	ListMatchesForDateFunc       func(ctx context.Context, date string) ([]Match, error)
	ListMatchesForPlayerFunc     func(ctx context.Context, playerID, fromDate string) ([]Match, error)
	ListInvitationsForPlayerFunc func(ctx context.Context, playerID string) ([]Match, error)
	AddTimeSlotRequestFunc       func(ctx context.Context, playerID, date, time string) (*TimeSlotRequest, error)
	ListRequestsForDateFunc      func(ctx context.Context, date string) ([]TimeSlotRequest, error)

	// Call records
	MirrorExternalBookingCalls []ExternalBooking
	ListMatchesForDateCalls    []string
}

var _ Service = (*MockService)(nil)

func (m *MockService) CreateMatchAndInvite(ctx context.Context, params CreateMatchParams) (*Match, error) {
	if m.CreateMatchAndInviteFunc != nil {
		return m.CreateMatchAndInviteFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockService) InvitePlayersToMatch(ctx context.Context, matchID string, playerIDs []string) (*Match, error) {
	if m.InvitePlayersToMatchFunc != nil {
		return m.InvitePlayersToMatchFunc(ctx, matchID, playerIDs)
	}
	return nil, nil
}

func (m *MockService) RespondToInvitation(ctx context.Context, matchID, playerID string, response Response) (*Match, error) {
	if m.RespondToInvitationFunc != nil {
		return m.RespondToInvitationFunc(ctx, matchID, playerID, response)
	}
	return nil, nil
}

func (m *MockService) BookCourt(ctx context.Context, courtID, date, time, playerID string) (*Match, error) {
	if m.BookCourtFunc != nil {
		return m.BookCourtFunc(ctx, courtID, date, time, playerID)
	}
	return nil, nil
}

func (m *MockService) CancelMatch(ctx context.Context, matchID string, actor Actor) (*Match, error) {
	if m.CancelMatchFunc != nil {
		return m.CancelMatchFunc(ctx, matchID, actor)
	}
	return nil, nil
}

func (m *MockService) MirrorExternalBooking(ctx context.Context, booking ExternalBooking) (*Match, bool, error) {
	m.mu.Lock()
	m.MirrorExternalBookingCalls = append(m.MirrorExternalBookingCalls, booking)
	m.mu.Unlock()
	if m.MirrorExternalBookingFunc != nil {
		return m.MirrorExternalBookingFunc(ctx, booking)
	}
	return &Match{ExternalID: booking.ExternalID, CourtID: booking.CourtID, Date: booking.Date, Time: booking.Time, Status: StatusBooked}, true, nil
}

func (m *MockService) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(ctx, matchID)
	}
	return nil, nil
}

func (m *MockService) ListMatchesForDate(ctx context.Context, date string) ([]Match, error) {
	m.mu.Lock()
	m.ListMatchesForDateCalls = append(m.ListMatchesForDateCalls, date)
	m.mu.Unlock()
	if m.ListMatchesForDateFunc != nil {
		return m.ListMatchesForDateFunc(ctx, date)
	}
	return []Match{}, nil
}

func (m *MockService) ListMatchesForPlayer(ctx context.Context, playerID, fromDate string) ([]Match, error) {
	if m.ListMatchesForPlayerFunc != nil {
		return m.ListMatchesForPlayerFunc(ctx, playerID, fromDate)
	}
	return []Match{}, nil
}

func (m *MockService) ListInvitationsForPlayer(ctx context.Context, playerID string) ([]Match, error) {
	if m.ListInvitationsForPlayerFunc != nil {
		return m.ListInvitationsForPlayerFunc(ctx, playerID)
	}
	return []Match{}, nil
}

func (m *MockService) AddTimeSlotRequest(ctx context.Context, playerID, date, time string) (*TimeSlotRequest, error) {
	if m.AddTimeSlotRequestFunc != nil {
		return m.AddTimeSlotRequestFunc(ctx, playerID, date, time)
	}
	return nil, nil
}

func (m *MockService) ListRequestsForDate(ctx context.Context, date string) ([]TimeSlotRequest, error) {
	if m.ListRequestsForDateFunc != nil {
		return m.ListRequestsForDateFunc(ctx, date)
	}
	return []TimeSlotRequest{}, nil
}

// RecordingSink is an EventSink that keeps every event.
type RecordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *RecordingSink) Publish(_ context.Context, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Events returns a copy of the events received so far.
func (s *RecordingSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// Types returns the received event types in order.
func (s *RecordingSink) Types() []EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]EventType, len(s.events))
	for i, e := range s.events {
		types[i] = e.Type
	}
	return types
}
