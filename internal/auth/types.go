package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ismlunati/padelMeet/internal/club"
)

type service struct {
	players club.ClubStore
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

// Claims are the JWT claims of a session token.
type Claims struct {
	UserID string    `json:"user_id"`
	Role   club.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session is the result of a successful login.
type Session struct {
	Player    *club.PlayerInfo `json:"user"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
}
