package auth

import (
	"context"

	"github.com/ismlunati/padelMeet/internal/club"
)

// Authenticator turns credentials into a verified player.
type Authenticator interface {
	// Login checks an email and password and issues a bearer token.
	Login(ctx context.Context, email, password string) (*Session, error)
	// Authenticate resolves a bearer token to the current player record.
	Authenticate(ctx context.Context, token string) (*club.PlayerInfo, error)
}
