package matchmaking

import (
	"database/sql"
	"slices"
	"sync"
	"time"
)

// store handles database operations for matches and time-slot requests.
type store struct {
	db *sql.DB
	mu sync.Mutex
}

// DefaultCapacity is the roster size of a doubles match.
const DefaultCapacity = 4

// MatchStatus represents where a match is in its lifecycle.
type MatchStatus string

const (
	StatusOrganizing MatchStatus = "ORGANIZING"
	StatusConfirmed  MatchStatus = "CONFIRMED"
	StatusBooked     MatchStatus = "BOOKED"
	StatusCancelled  MatchStatus = "CANCELLED"
)

// Source tells where a match was created.
type Source string

const (
	SourceClub      Source = "club"
	SourcePlaytomic Source = "playtomic"
)

// Match occupies one (court, date, time) slot. Organized matches fill a
// roster through invitations; booked matches claim the whole court and keep
// both lists empty.
type Match struct {
	ID               string      `json:"id" msgpack:"id"`
	CourtID          string      `json:"courtId" msgpack:"court_id"`
	Date             string      `json:"date" msgpack:"date"` // YYYY-MM-DD
	Time             string      `json:"time" msgpack:"time"` // HH:MM
	Capacity         int         `json:"capacity" msgpack:"capacity"`
	Status           MatchStatus `json:"status" msgpack:"status"`
	PlayerIDs        []string    `json:"players" msgpack:"players"`
	InvitedPlayerIDs []string    `json:"invitedPlayerIds" msgpack:"invited_player_ids"`
	OrganizerID      string      `json:"organizerId,omitempty" msgpack:"organizer_id,omitempty"`
	BookedByID       string      `json:"bookedById,omitempty" msgpack:"booked_by_id,omitempty"`
	Source           Source      `json:"source" msgpack:"source"`
	ExternalID       string      `json:"externalId,omitempty" msgpack:"external_id,omitempty"`
	CreatedAt        time.Time   `json:"createdAt" msgpack:"created_at"`
	UpdatedAt        time.Time   `json:"updatedAt" msgpack:"updated_at"`
}

// HasPlayer reports whether playerID holds a seat in the roster.
func (m *Match) HasPlayer(playerID string) bool {
	return slices.Contains(m.PlayerIDs, playerID)
}

// IsInvited reports whether playerID has a pending invitation.
func (m *Match) IsInvited(playerID string) bool {
	return slices.Contains(m.InvitedPlayerIDs, playerID)
}

// IsFull reports whether the roster reached capacity.
func (m *Match) IsFull() bool {
	return len(m.PlayerIDs) >= m.Capacity
}

// TimeSlotRequest is a player's court-agnostic interest in a (date, time).
type TimeSlotRequest struct {
	ID        string    `json:"id" msgpack:"id"`
	PlayerID  string    `json:"playerId" msgpack:"player_id"`
	Date      string    `json:"date" msgpack:"date"`
	Time      string    `json:"time" msgpack:"time"`
	CreatedAt time.Time `json:"createdAt" msgpack:"created_at"`
}

// Response is a player's answer to an invitation.
type Response string

const (
	ResponseAccept  Response = "ACCEPT"
	ResponseDecline Response = "DECLINE"
)

// Valid reports whether r is ACCEPT or DECLINE.
func (r Response) Valid() bool {
	return r == ResponseAccept || r == ResponseDecline
}

// CreateMatchParams are the inputs of CreateMatchAndInvite.
type CreateMatchParams struct {
	CourtID          string
	Date             string
	Time             string
	OrganizerID      string
	InvitedPlayerIDs []string
}

// ExternalBooking is a booking made outside the club app (Playtomic) that is
// mirrored as a BOOKED match.
type ExternalBooking struct {
	ExternalID string
	CourtID    string
	Date       string
	Time       string
}

// Actor identifies who issues a command that depends on ownership.
type Actor struct {
	ID    string
	Admin bool
}

// EventType names a lifecycle transition.
type EventType string

const (
	EventMatchCreated       EventType = "match-created"
	EventPlayersInvited     EventType = "players-invited"
	EventInvitationAccepted EventType = "invitation-accepted"
	EventInvitationDeclined EventType = "invitation-declined"
	EventMatchConfirmed     EventType = "match-confirmed"
	EventCourtBooked        EventType = "court-booked"
	EventMatchCancelled     EventType = "match-cancelled"
	EventTimeSlotRequested  EventType = "time-slot-requested"
)

// Event describes one applied transition. Exactly one of Match and Request
// is set.
type Event struct {
	Type      EventType        `json:"type" msgpack:"type"`
	Match     *Match           `json:"match,omitempty" msgpack:"match,omitempty"`
	Request   *TimeSlotRequest `json:"request,omitempty" msgpack:"request,omitempty"`
	ActorID   string           `json:"actorId,omitempty" msgpack:"actor_id,omitempty"`
	PlayerIDs []string         `json:"playerIds,omitempty" msgpack:"player_ids,omitempty"`
	At        time.Time        `json:"at" msgpack:"at"`
}
