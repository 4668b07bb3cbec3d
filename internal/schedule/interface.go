package schedule

import (
	"context"

	"github.com/ismlunati/padelMeet/internal/matchmaking"
)

// Assembler composes the read model for one club day. It never mutates.
type Assembler interface {
	GetScheduleForDate(ctx context.Context, date string) (*Schedule, error)
}

// MatchReader is the part of matchmaking.Service the assembler reads.
type MatchReader interface {
	ListMatchesForDate(ctx context.Context, date string) ([]matchmaking.Match, error)
	ListRequestsForDate(ctx context.Context, date string) ([]matchmaking.TimeSlotRequest, error)
}
