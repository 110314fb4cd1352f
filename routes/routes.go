package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/pinclub/pin-engine/handlers"
	"github.com/pinclub/pin-engine/middleware"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Player     *handlers.PlayerHandler
	League     *handlers.LeagueHandler
	RapidMatch *handlers.RapidMatchHandler
	Tournament *handlers.TournamentHandler
	Season     *handlers.SeasonHandler
	Prediction *handlers.PredictionHandler
	Badge      *handlers.BadgeHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, h Handlers, jwtSecret string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticator([]byte(jwtSecret))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	router.Get("/swagger/*", httpSwagger.Handler())

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	router.Route("/players", func(r chi.Router) {
		r.Get("/", h.Player.List)
		r.Get("/{playerID}", h.Player.GetByID)
	})

	router.Route("/leagues", func(r chi.Router) {
		r.Get("/", h.League.List)
		r.Get("/{leagueID}", h.League.GetByID)
		r.Get("/{leagueID}/leaderboard", h.League.Leaderboard)
		r.Get("/{leagueID}/tournaments", h.Tournament.ListByLeague)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{leagueID}/join", h.League.Join)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireAdmin)
			r.Post("/", h.League.Create)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", h.RapidMatch.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", h.RapidMatch.Register)
			r.Post("/{matchID}/confirm", h.RapidMatch.Confirm)
			r.Get("/pending", h.RapidMatch.PendingForMe)
		})
	})

	router.Route("/seasons", func(r chi.Router) {
		r.Get("/", h.Season.List)
		r.Get("/{seasonID}", h.Season.GetByID)
		r.Get("/{seasonID}/leaderboard", h.Season.Leaderboard)
		r.Get("/{seasonID}/matches", h.RapidMatch.ListBySeason)
		r.Get("/{seasonID}/result", h.Season.GetCloseResult)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireAdmin)
			r.Post("/", h.Season.Create)
			r.Post("/{seasonID}/close", h.Season.Close)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/{tournamentID}", h.Tournament.GetByID)
		r.Get("/{tournamentID}/brackets", h.Tournament.GetBrackets)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireAdmin)
			r.Post("/", h.Tournament.Create)
			r.Post("/{tournamentID}/brackets", h.Tournament.GenerateBrackets)
			r.Post("/{tournamentID}/matches/{matchUID}/result", h.Tournament.SubmitResult)
		})
	})

	router.Get("/predictions", h.Prediction.Predict)

	router.Route("/rewards", func(r chi.Router) {
		r.Get("/", h.Badge.RewardTable)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireAdmin)
			r.Post("/{role}/{tier}/icon", h.Badge.UploadIcon)
		})
	})

	router.Route("/ws", func(r chi.Router) {
		r.Get("/tournaments/{tournamentID}", h.WebSocket.SubscribeTournament)
		r.Get("/seasons/{seasonID}", h.WebSocket.SubscribeSeason)
	})
}
