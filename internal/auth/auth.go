package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ismlunati/padelMeet/internal/apperr"
	"github.com/ismlunati/padelMeet/internal/club"
)

// New creates an Authenticator issuing HS256 tokens valid for ttl.
func New(players club.ClubStore, secret string, ttl time.Duration) Authenticator {
	return &service{
		players: players,
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	player, err := s.players.GetPlayerByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		log.Warn("Login for unknown email", "email", email)
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(player.PasswordHash, password) {
		log.Warn("Login with wrong password", "player", player.ID)
		return nil, apperr.Unauthorized("invalid email or password")
	}

	token, expiresAt, err := s.issue(player)
	if err != nil {
		return nil, err
	}
	log.Info("Player logged in", "player", player.ID, "role", player.Role)
	return &Session{Player: player, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *service) issue(player *club.PlayerInfo) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		UserID: player.ID,
		Role:   player.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   player.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Authenticate verifies the token and reloads the player, so a role change
// or a removed account takes effect before the token expires.
func (s *service) Authenticate(ctx context.Context, tokenString string) (*club.PlayerInfo, error) {
	if tokenString == "" {
		return nil, apperr.Unauthorized("missing token")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("invalid token")
	}
	if claims.UserID == "" {
		return nil, apperr.Unauthorized("invalid token claims")
	}

	player, err := s.players.GetPlayer(ctx, claims.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthorized("player %s no longer exists", claims.UserID)
	}
	if err != nil {
		return nil, err
	}
	return player, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", apperr.Unauthorized("authorization header required")
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", apperr.Unauthorized("invalid authorization header format")
	}
	return parts[1], nil
}
