package http

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/ismlunati/padelMeet/internal/apperr"
	"github.com/ismlunati/padelMeet/internal/auth"
	"github.com/ismlunati/padelMeet/internal/club"
)

// contextKey is a custom type to avoid key collisions in context.
type contextKey string

const (
	playerKey contextKey = "player"
)

// paramsMiddleware logs the request and handles the 'verbose' query parameter.
func paramsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Info("incoming request", "method", r.Method, "url", r.URL.String(), "request_id", chimiddleware.GetReqID(r.Context()))
		// Handle 'verbose' for request-scoped verbose logging.
		if r.URL.Query().Get("verbose") == "true" {
			originalLevel := log.GetLevel()
			log.SetLevel(log.DebugLevel)
			defer log.SetLevel(originalLevel)
		}
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware observes the duration of every request by route pattern.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.Metrics.ObserveRequestDuration(r.Method+" "+route, time.Since(start).Seconds())
	})
}

// authMiddleware resolves the bearer token to the calling player.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		player, err := s.Auth.Authenticate(r.Context(), token)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), playerKey, player)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminMiddleware must run after authMiddleware.
func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		player := playerFromContext(r)
		if player == nil || !player.IsAdmin() {
			s.respondError(w, r, apperr.Forbidden("admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// playerFromContext returns the authenticated caller, or nil outside authMiddleware.
func playerFromContext(r *http.Request) *club.PlayerInfo {
	player, _ := r.Context().Value(playerKey).(*club.PlayerInfo)
	return player
}
