package notifier

import (
	"github.com/ismlunati/padelMeet/internal/club"
	"github.com/ismlunati/padelMeet/internal/matchmaking"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// An organizer opened a match that still has free spots.
	SendMatchOrganizing(a Announcement, dryRun bool) error
	// The roster is full.
	SendMatchConfirmed(a Announcement, dryRun bool) error
	SendCourtBooked(a Announcement, dryRun bool) error
	SendMatchCancelled(a Announcement, dryRun bool) error
}

// Announcement is a match with its references resolved to display names.
type Announcement struct {
	Match       *matchmaking.Match
	Court       club.Court
	Organizer   string
	BookedBy    string
	PlayerNames []string
	CancelledBy string
}
