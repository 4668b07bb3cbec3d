package http

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/ismlunati/padelMeet/internal/apperr"
	"github.com/ismlunati/padelMeet/internal/club"
	"github.com/ismlunati/padelMeet/internal/matchmaking"
	"github.com/ismlunati/padelMeet/internal/schedule"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, apperr.NotFound("no route for %s %s", r.Method, r.URL.Path))
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
		session, err := s.Auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, session)
	}
}

func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, playerFromContext(r))
	}
}

func (s *Server) MyInvitationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Matches.ListInvitationsForPlayer(r.Context(), playerFromContext(r).ID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) MyMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Matches.ListMatchesForPlayer(r.Context(), playerFromContext(r).ID, r.URL.Query().Get("from"))
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.ListPlayers(r.Context())
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, players)
	}
}

func (s *Server) SetRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req roleRequest
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
		playerID := chi.URLParam(r, "id")
		if err := s.Store.SetRole(r.Context(), playerID, req.Role); err != nil {
			s.respondError(w, r, err)
			return
		}
		player, err := s.Store.GetPlayer(r.Context(), playerID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		log.Info("Changed player role", "player", playerID, "role", req.Role, "by", playerFromContext(r).ID)
		respondJSON(w, http.StatusOK, player)
	}
}

func (s *Server) ListCourtsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courts, err := s.Store.ListCourts(r.Context())
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, courts)
	}
}

func (s *Server) GetOpeningHoursHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours, err := s.Store.GetOpeningHours(r.Context())
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, hours.Wire())
	}
}

func (s *Server) UpdateOpeningHoursHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req openingHoursRequest
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
		hours, err := club.ParseOpeningHours(req)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		updated, err := s.Store.UpdateOpeningHours(r.Context(), hours)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, updated.Wire())
	}
}

func (s *Server) ScheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := queryDate(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		sched, err := s.Schedule.GetScheduleForDate(r.Context(), date)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, sched)
	}
}

// ScheduleGridHandler renders the day as courts x times, relative to the caller.
func (s *Server) ScheduleGridHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := queryDate(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		sched, err := s.Schedule.GetScheduleForDate(r.Context(), date)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		courts, err := s.Store.ListCourts(r.Context())
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, schedule.BuildGrid(sched, courts, playerFromContext(r).ID))
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match, err := s.Matches.GetMatch(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, match)
	}
}

// CreateMatchHandler opens a match organized by the caller.
func (s *Server) CreateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createMatchRequest
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
		match, err := s.Matches.CreateMatchAndInvite(r.Context(), matchmaking.CreateMatchParams{
			CourtID:          req.CourtID,
			Date:             req.Date,
			Time:             req.Time,
			OrganizerID:      playerFromContext(r).ID,
			InvitedPlayerIDs: req.InvitedPlayerIDs,
		})
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, match)
	}
}

func (s *Server) InvitePlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req inviteRequest
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
		match, err := s.Matches.InvitePlayersToMatch(r.Context(), chi.URLParam(r, "id"), req.PlayerIDs)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, match)
	}
}

// RespondHandler answers an invitation on behalf of the caller.
func (s *Server) RespondHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req respondRequest
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
		match, err := s.Matches.RespondToInvitation(r.Context(), chi.URLParam(r, "id"), playerFromContext(r).ID, req.Response)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, match)
	}
}

func (s *Server) CancelMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := playerFromContext(r)
		match, err := s.Matches.CancelMatch(r.Context(), chi.URLParam(r, "id"), matchmaking.Actor{ID: caller.ID, Admin: caller.IsAdmin()})
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, match)
	}
}

func (s *Server) BookCourtHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bookingRequest
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
		match, err := s.Matches.BookCourt(r.Context(), req.CourtID, req.Date, req.Time, playerFromContext(r).ID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, match)
	}
}

func (s *Server) ListTimeSlotRequestsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := queryDate(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		requests, err := s.Matches.ListRequestsForDate(r.Context(), date)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, requests)
	}
}

// AddTimeSlotRequestHandler is idempotent, so it answers 200 for new and
// repeated requests alike.
func (s *Server) AddTimeSlotRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req timeSlotRequest
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
		request, err := s.Matches.AddTimeSlotRequest(r.Context(), playerFromContext(r).ID, req.Date, req.Time)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, request)
	}
}

func (s *Server) ImportPlaytomicHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := queryDate(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		report, err := s.Importer.Import(r.Context(), date)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, report)
	}
}

// StatsHandler returns the lifetime event counters.
func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Counters.GetAll()
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, stats)
	}
}
