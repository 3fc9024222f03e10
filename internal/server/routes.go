package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, opts Options) {
	store, svc := opts.Store, opts.Play
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Scoreboard API", "/openapi.json", "/docs"))

	r.Route("/api/auth", func(r chi.Router) {
		r.With(rateLimit(20)).Get("/check/{name}", handleCheckAccount(store))
		r.With(rateLimit(10)).Post("/register", handleRegister(store, opts.SessionTTL))
		r.With(rateLimit(10)).Post("/login", handleLogin(store, opts.SessionTTL))
		r.With(rateLimit(5)).Post("/admin", handleAdminLogin(store, opts.AdminHash, opts.AdminTTL))

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(store))
			r.Post("/logout", handleLogout(store))
			r.Get("/me", handleMe(store))
		})
	})

	r.Get("/api/games", handleListGames(svc))

	// Browser clients pass the token as a query parameter here.
	r.Get("/api/play/ws", handlePlayWS(logger, store, svc, broker))
	r.Get("/api/play/events", handlePlayEvents(store, broker))

	// Account routes.
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware(store))
		r.Use(accountOnly)

		r.Get("/api/players", handleListPlayers(store))
		r.Post("/api/players", handleCreatePlayer(store))
		r.Put("/api/players/{id}", handleUpdatePlayer(store))
		r.Delete("/api/players/{id}", handleDeletePlayer(store))
		r.Get("/api/players/{id}/stats", handlePlayerStats(store))

		r.Get("/api/history", handleListHistory(store, opts.HistoryMax))
		r.Post("/api/history", handleAddHistory(store))
		r.Delete("/api/history/{id}", handleDeleteHistory(store))

		r.Get("/api/play", handleCurrentPlay(logger, svc))
		r.Post("/api/play", handleStartPlay(logger, svc, broker))
		r.Delete("/api/play", handleAbandonPlay(logger, svc, broker))
		r.Post("/api/play/actions", handlePlayAction(logger, svc, broker))
		r.Post("/api/play/undo", handlePlayUndo(logger, svc, broker))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware(store))
		r.Use(adminOnly)
		r.Get("/accounts", handleAdminListAccounts(store))
		r.Delete("/accounts/{id}", handleAdminDeleteAccount(logger, store, svc))
		r.Get("/stats", handleAdminStats(store))
		r.Post("/cleanup", handleAdminCleanup(store))
	})

	if opts.SPADir != "" {
		if info, err := os.Stat(opts.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", opts.SPADir)
			r.NotFound(handleSPA(opts.SPADir))
		}
	}
}
