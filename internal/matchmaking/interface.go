package matchmaking

import "context"

// Service is the match lifecycle engine and the time-slot request ledger.
// Every mutating call is atomic with respect to concurrent calls touching the
// same match, slot or player.
type Service interface {
	// CreateMatchAndInvite opens an ORGANIZING match with the organizer seated
	// and clears every time-slot request for the same (date, time).
	CreateMatchAndInvite(ctx context.Context, params CreateMatchParams) (*Match, error)

	// InvitePlayersToMatch adds invitations, skipping players already seated or invited.
	InvitePlayersToMatch(ctx context.Context, matchID string, playerIDs []string) (*Match, error)

	// RespondToInvitation applies ACCEPT or DECLINE. The accept that fills the
	// roster confirms the match and drops the remaining invitations.
	RespondToInvitation(ctx context.Context, matchID, playerID string, response Response) (*Match, error)

	// BookCourt claims a whole slot for one player.
	BookCourt(ctx context.Context, courtID, date, time, playerID string) (*Match, error)

	// CancelMatch frees the slot of a live match.
	CancelMatch(ctx context.Context, matchID string, actor Actor) (*Match, error)

	// MirrorExternalBooking stores an external booking as a BOOKED match.
	// It reports false when the booking was already mirrored.
	MirrorExternalBooking(ctx context.Context, booking ExternalBooking) (*Match, bool, error)

	GetMatch(ctx context.Context, matchID string) (*Match, error)
	// ListMatchesForDate returns the live (non-cancelled) matches of a date.
	ListMatchesForDate(ctx context.Context, date string) ([]Match, error)
	// ListMatchesForPlayer returns live matches the player organizes, plays
	// in or booked, on or after fromDate (all dates when empty).
	ListMatchesForPlayer(ctx context.Context, playerID, fromDate string) ([]Match, error)
	// ListInvitationsForPlayer returns ORGANIZING matches with a pending
	// invitation for the player.
	ListInvitationsForPlayer(ctx context.Context, playerID string) ([]Match, error)

	// AddTimeSlotRequest is idempotent per (player, date, time).
	AddTimeSlotRequest(ctx context.Context, playerID, date, time string) (*TimeSlotRequest, error)
	ListRequestsForDate(ctx context.Context, date string) ([]TimeSlotRequest, error)
}

// Queries are the persistence operations the engine composes. Implementations
// return apperr.ErrNotFound for missing rows.
type Queries interface {
	GetMatch(ctx context.Context, matchID string) (*Match, error)
	// FindActiveMatchAt returns the non-cancelled match holding a slot.
	FindActiveMatchAt(ctx context.Context, courtID, date, time string) (*Match, error)
	FindMatchByExternalID(ctx context.Context, externalID string) (*Match, error)
	InsertMatch(ctx context.Context, match *Match) error
	// UpdateMatch persists status, booker, roster and invitations.
	UpdateMatch(ctx context.Context, match *Match) error
	ListMatchesByDate(ctx context.Context, date string) ([]Match, error)
	ListMatchesForPlayer(ctx context.Context, playerID, fromDate string) ([]Match, error)
	ListInvitationsForPlayer(ctx context.Context, playerID string) ([]Match, error)
	// PlayerBusyAt reports whether the player is seated in, or booked, a live
	// match at (date, time) other than excludeMatchID.
	PlayerBusyAt(ctx context.Context, playerID, date, time, excludeMatchID string) (bool, error)

	FindRequest(ctx context.Context, playerID, date, time string) (*TimeSlotRequest, error)
	InsertRequest(ctx context.Context, request *TimeSlotRequest) error
	DeleteRequestsForSlot(ctx context.Context, date, time string) (int64, error)
	ListRequestsForDate(ctx context.Context, date string) ([]TimeSlotRequest, error)
}

// Repository is Queries plus a transaction boundary. Inside fn only the
// given Queries may be used.
type Repository interface {
	Queries
	Transact(ctx context.Context, fn func(q Queries) error) error
}

// EventSink receives lifecycle events after the transition is committed.
// Publish must not block on delivery.
type EventSink interface {
	Publish(ctx context.Context, event Event)
}
