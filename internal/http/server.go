package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ismlunati/padelMeet/internal/auth"
	"github.com/ismlunati/padelMeet/internal/club"
	"github.com/ismlunati/padelMeet/internal/config"
	"github.com/ismlunati/padelMeet/internal/matchmaking"
	"github.com/ismlunati/padelMeet/internal/metrics"
	"github.com/ismlunati/padelMeet/internal/schedule"
)

func NewServer(cfg config.Config, store club.ClubStore, matches matchmaking.Service, assembler schedule.Assembler, authenticator auth.Authenticator, importer Importer, metricsSvc metrics.Metrics, metricsHandler http.Handler, counters metrics.MetricsStore) *Server {
	server := &Server{
		Store:          store,
		Matches:        matches,
		Schedule:       assembler,
		Auth:           authenticator,
		Importer:       importer,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Counters:       counters,
		Cfg:            cfg,
		Router:         chi.NewRouter(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	r := s.Router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.Cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(paramsMiddleware)
	r.NotFound(s.NotFoundHandler())

	r.Handle("/metrics", s.MetricsHandler)
	r.Get("/health", s.HealthCheckHandler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.metricsMiddleware)
		r.Post("/auth/login", s.LoginHandler())

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/me", s.CurrentUserHandler())
			r.Get("/me/invitations", s.MyInvitationsHandler())
			r.Get("/me/matches", s.MyMatchesHandler())

			r.Get("/players", s.ListPlayersHandler())
			r.Get("/courts", s.ListCourtsHandler())
			r.Get("/opening-hours", s.GetOpeningHoursHandler())

			r.Get("/schedule", s.ScheduleHandler())
			r.Get("/schedule/grid", s.ScheduleGridHandler())

			r.Get("/matches/{id}", s.GetMatchHandler())
			r.Post("/matches/{id}/response", s.RespondHandler())
			r.Post("/matches/{id}/cancel", s.CancelMatchHandler())
			r.Post("/bookings", s.BookCourtHandler())
			r.Get("/time-slot-requests", s.ListTimeSlotRequestsHandler())
			r.Post("/time-slot-requests", s.AddTimeSlotRequestHandler())

			r.Group(func(r chi.Router) {
				r.Use(s.adminMiddleware)

				r.Put("/players/{id}/role", s.SetRoleHandler())
				r.Put("/opening-hours", s.UpdateOpeningHoursHandler())
				r.Post("/matches", s.CreateMatchHandler())
				r.Post("/matches/{id}/invitations", s.InvitePlayersHandler())
				r.Post("/admin/import/playtomic", s.ImportPlaytomicHandler())
				r.Get("/admin/stats", s.StatsHandler())
			})
		})
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
