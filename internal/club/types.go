package club

import (
	"database/sql"
	"sync"
	"time"
)

// store handles all database operations for the club.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Role is a player's capability level at the API boundary.
type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RolePlayer
}

// PlayerInfo represents a registered club member.
type PlayerInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the player may administer the club.
func (p PlayerInfo) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Court is a physical court. ExternalName is the resource name the court has
// on Playtomic, used to map imported bookings.
type Court struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Location     string  `json:"location,omitempty"`
	Surface      string  `json:"surface,omitempty"`
	Indoor       bool    `json:"indoor"`
	PricePerHour float64 `json:"pricePerHour"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	ExternalName string  `json:"externalName,omitempty"`
}
