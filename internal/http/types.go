package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ismlunati/padelMeet/internal/auth"
	"github.com/ismlunati/padelMeet/internal/club"
	"github.com/ismlunati/padelMeet/internal/config"
	"github.com/ismlunati/padelMeet/internal/matchmaking"
	"github.com/ismlunati/padelMeet/internal/metrics"
	"github.com/ismlunati/padelMeet/internal/processor"
	"github.com/ismlunati/padelMeet/internal/schedule"
)

// Importer pulls external bookings into the club schedule.
type Importer interface {
	Import(ctx context.Context, date string) (*processor.ImportReport, error)
}

type Server struct {
	Store          club.ClubStore
	Matches        matchmaking.Service
	Schedule       schedule.Assembler
	Auth           auth.Authenticator
	Importer       Importer
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Counters       metrics.MetricsStore
	Cfg            config.Config
	Router         chi.Router
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) validate() error {
	return required("email", r.Email, "password", r.Password)
}

type roleRequest struct {
	Role club.Role `json:"role"`
}

func (r roleRequest) validate() error {
	return required("role", string(r.Role))
}

type createMatchRequest struct {
	CourtID          string   `json:"courtId"`
	Date             string   `json:"date"`
	Time             string   `json:"time"`
	InvitedPlayerIDs []string `json:"invitedPlayerIds"`
}

func (r createMatchRequest) validate() error {
	return required("courtId", r.CourtID, "date", r.Date, "time", r.Time)
}

type inviteRequest struct {
	PlayerIDs []string `json:"playerIds"`
}

func (r inviteRequest) validate() error {
	if len(r.PlayerIDs) == 0 {
		return errRequired("playerIds")
	}
	return nil
}

type respondRequest struct {
	Response matchmaking.Response `json:"response"`
}

func (r respondRequest) validate() error {
	if !r.Response.Valid() {
		return errInvalid("response", "ACCEPT or DECLINE")
	}
	return nil
}

type bookingRequest struct {
	CourtID string `json:"courtId"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

func (r bookingRequest) validate() error {
	return required("courtId", r.CourtID, "date", r.Date, "time", r.Time)
}

type timeSlotRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

func (r timeSlotRequest) validate() error {
	return required("date", r.Date, "time", r.Time)
}

// openingHoursRequest uses the wire shape: day keys "0".."6".
type openingHoursRequest map[string][]string

func (r openingHoursRequest) validate() error { return nil }
