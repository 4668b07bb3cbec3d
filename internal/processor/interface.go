package processor

import (
	"context"

	"github.com/ismlunati/padelMeet/internal/matchmaking"
	"github.com/ismlunati/padelMeet/internal/notifier"
)

// Notifier defines the notification operations required by the processor.
type Notifier interface {
	notifier.Notifier
}

// Mirror is the part of the match engine the importer drives.
type Mirror interface {
	MirrorExternalBooking(ctx context.Context, booking matchmaking.ExternalBooking) (*matchmaking.Match, bool, error)
}
