package schedule

import (
	"github.com/ismlunati/padelMeet/internal/club"
	"github.com/ismlunati/padelMeet/internal/matchmaking"
)

type assembler struct {
	club    club.ClubStore
	matches MatchReader
}

// Schedule is everything a client needs to render a day: the bookable
// times, every live match of the date and every time-slot request.
type Schedule struct {
	Date             string                        `json:"date"`
	DayOfWeek        int                           `json:"dayOfWeek"`
	SlotTimes        []string                      `json:"slotTimes"`
	Matches          []matchmaking.Match           `json:"matches"`
	TimeSlotRequests []matchmaking.TimeSlotRequest `json:"timeSlotRequests"`
}

// CellState is what occupies a (court, time) cell.
type CellState string

const (
	CellFree       CellState = "FREE"
	CellOrganizing CellState = "ORGANIZING"
	CellConfirmed  CellState = "CONFIRMED"
	CellBooked     CellState = "BOOKED"
)

// Cell is one court at one time.
type Cell struct {
	CourtID   string    `json:"courtId"`
	State     CellState `json:"state"`
	MatchID   string    `json:"matchId,omitempty"`
	Players   int       `json:"players"`
	OpenSpots int       `json:"openSpots"`
	// Viewer flags are relative to the player the grid was built for.
	ViewerPlaying bool `json:"viewerPlaying,omitempty"`
	ViewerInvited bool `json:"viewerInvited,omitempty"`
}

// Row is one start time across all courts.
type Row struct {
	Time string `json:"time"`
	// Open is false for a time outside today's opening hours that still
	// carries a match.
	Open                bool     `json:"open"`
	Cells               []Cell   `json:"cells"`
	InterestedPlayerIDs []string `json:"interestedPlayerIds"`
	ViewerInterested    bool     `json:"viewerInterested"`
}

// Grid is the courts x times projection of a Schedule.
type Grid struct {
	Date      string       `json:"date"`
	DayOfWeek int          `json:"dayOfWeek"`
	Courts    []club.Court `json:"courts"`
	Rows      []Row        `json:"rows"`
}
