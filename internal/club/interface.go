package club

import (
	"context"
	"time"
)

// ClubStore is the read side of the club's reference data (players, courts,
// opening hours) plus the admin operations that maintain it.
type ClubStore interface {
	// GetPlayer fails with apperr.ErrNotFound when the id is unknown.
	GetPlayer(ctx context.Context, playerID string) (*PlayerInfo, error)
	GetPlayerByEmail(ctx context.Context, email string) (*PlayerInfo, error)
	// GetPlayers returns the players in the order requested and fails with
	// apperr.ErrNotFound if any id is unknown.
	GetPlayers(ctx context.Context, playerIDs []string) ([]PlayerInfo, error)
	ListPlayers(ctx context.Context) ([]PlayerInfo, error)
	UpsertPlayer(ctx context.Context, player PlayerInfo) error
	SetRole(ctx context.Context, playerID string, role Role) error

	GetCourt(ctx context.Context, courtID string) (*Court, error)
	ListCourts(ctx context.Context) ([]Court, error)
	UpsertCourt(ctx context.Context, court Court) error
	FindCourtByExternalName(ctx context.Context, name string) (*Court, error)

	GetOpeningHours(ctx context.Context) (OpeningHours, error)
	// UpdateOpeningHours replaces the whole weekly grid.
	UpdateOpeningHours(ctx context.Context, hours OpeningHours) (OpeningHours, error)
	// IsOpen reports whether slot is a bookable start time on date's weekday.
	IsOpen(ctx context.Context, date time.Time, slot string) (bool, error)
}
