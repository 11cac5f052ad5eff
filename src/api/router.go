package api

import (
	"net/http"

	"budgetbox-server/src/config"
	"budgetbox-server/src/handlers"
	"budgetbox-server/src/middleware"
	"budgetbox-server/src/store"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

func NewRouter(st store.Store, cfg config.Config, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With"},
		MaxAge:         300,
	}).Handler)
	r.Use(middleware.NewRateLimiter(rate.Limit(50), 100).Middleware())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", handlers.Login(st, cfg.JWTSecret, logger))
		r.Post("/auth/register", handlers.Register(st, cfg.JWTSecret, logger))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware(cfg.JWTSecret)).Group(func(r chi.Router) {
			// Budget sync
			r.Post("/budget/sync", handlers.SyncBudget(st, logger))
			r.Get("/budget/latest", handlers.GetLatestBudget(st, logger))

			// Derived statistics
			r.Get("/stats", handlers.GetStats(st, logger))

			// Snapshot history
			r.Post("/history", handlers.CreateSnapshot(st, logger))
			r.Get("/history", handlers.ListSnapshots(st, logger))
			r.Delete("/history/{snapshot_id}", handlers.DeleteSnapshot(st, logger))
			r.Post("/history/{snapshot_id}/restore", handlers.RestoreSnapshot(st, logger))
		})
	})

	return r
}
