package main

import (
	"context"
	"net/http"

	"budgetbox-server/src/api"
	"budgetbox-server/src/config"
	"budgetbox-server/src/db"
	"budgetbox-server/src/logger"
	"budgetbox-server/src/store"
)

func main() {
	cfg := config.Load()
	log := logger.InitLogger()

	var st store.Store
	switch cfg.StoreBackend {
	case "memory":
		log.Warn().Msg("Using in-memory store; state is lost on restart")
		st = store.NewMemoryStore()
	default:
		if err := db.RunMigrations(context.Background(), cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Migrations failed")
		}
		pool, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("DB connection failed")
		}
		db.InitCache()
		st = store.NewPostgresStore(pool)
	}
	defer st.Close()

	router := api.NewRouter(st, cfg, log)

	log.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Msg("API server running")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal().Err(err).Msg("Server exited")
	}
}
