package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/EDH-Tracker/internal/api/auth"
	"github.com/ramonehamilton/EDH-Tracker/internal/api/handlers"
	"github.com/ramonehamilton/EDH-Tracker/internal/api/response"
	"github.com/ramonehamilton/EDH-Tracker/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning, no auth)
	s.router.Get("/health", s.healthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware)

		profileHandler := handlers.NewProfileHandler(s.services.Friends, s.logger)
		r.Route("/profile", func(r chi.Router) {
			r.Get("/", profileHandler.GetProfile)
			r.Put("/username", profileHandler.UpdateUsername)
		})

		deckHandler := handlers.NewDeckHandler(s.services.Collection, s.logger)
		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deckHandler.GetDecks)
			r.Post("/", deckHandler.CreateDeck)
			r.Put("/order", deckHandler.ReorderDecks)
			r.Put("/{deckID}", deckHandler.UpdateDeck)
			r.Put("/{deckID}/archive", deckHandler.ArchiveDeck)
			r.Delete("/{deckID}", deckHandler.DeleteDeck)
		})

		gameHandler := handlers.NewGameHandler(s.services.Collection, s.logger)
		r.Route("/games", func(r chi.Router) {
			r.Get("/", gameHandler.GetGames)
			r.Post("/", gameHandler.LogGame)
			r.Put("/{gameID}", gameHandler.EditGame)
			r.Delete("/{gameID}", gameHandler.DeleteGame)
		})

		buddyHandler := handlers.NewBuddyHandler(s.services.Collection, s.logger)
		r.Route("/buddies", func(r chi.Router) {
			r.Get("/", buddyHandler.GetBuddies)
			r.Post("/", buddyHandler.AddBuddy)
			r.Delete("/{name}", buddyHandler.RemoveBuddy)
		})

		statsHandler := handlers.NewStatsHandler(s.services.Collection, s.services.Friends, s.logger)
		r.Route("/stats", func(r chi.Router) {
			r.Get("/", statsHandler.GetStats)
			r.Get("/{kind}", statsHandler.GetStats)
		})

		friendHandler := handlers.NewFriendHandler(s.services.Friends, s.logger)
		r.Route("/friends", func(r chi.Router) {
			r.Get("/", friendHandler.GetFriends)
			r.Get("/requests", friendHandler.GetRequests)
			r.Post("/requests", friendHandler.SendRequest)
			r.Post("/requests/{fromID}/accept", friendHandler.AcceptRequest)
			r.Delete("/requests/{fromID}", friendHandler.DeclineRequest)
			r.Get("/{friendID}", friendHandler.GetFriend)
			r.Get("/{friendID}/stats", statsHandler.GetFriendStats)
			r.Delete("/{friendID}", friendHandler.RemoveFriend)
		})

		if s.services.Cards != nil {
			cardHandler := handlers.NewCardHandler(s.services.Cards)
			r.Route("/cards", func(r chi.Router) {
				r.Get("/commander", cardHandler.GetCommander)
				r.Get("/suggest", cardHandler.Suggest)
				r.Get("/image", cardHandler.GetImage)
			})
		}

		exportHandler := handlers.NewExportHandler(s.services.Collection, s.services.Friends, s.logger)
		r.Route("/export", func(r chi.Router) {
			r.Get("/backup", exportHandler.Backup)
			r.Get("/{dataset}", exportHandler.Export)
		})
		r.Post("/import/backup", exportHandler.Restore)

		chartHandler := handlers.NewChartHandler(s.services.Collection, s.logger)
		r.Get("/charts/{kind}", chartHandler.GetChart)

		adminHandler := handlers.NewAdminHandler(s.services.Friends, s.metrics, s.services.Jobs, s.logger)
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin(s.admins))
			r.Post("/reconcile", adminHandler.Reconcile)
			r.Get("/metrics", adminHandler.GetMetrics)
			r.Get("/jobs", adminHandler.GetJobs)
			r.Post("/jobs/{name}/run", adminHandler.RunJob)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status":  "healthy",
		"version": version.GetVersion(),
	})
}
