package main

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"rarefy/adapters/postgres"
	"rarefy/adapters/rng"
	"rarefy/adapters/stats/engine"
	"rarefy/app"
	"rarefy/internal"
	"rarefy/internal/api"
	"rarefy/internal/config"
	"rarefy/ports"
)

func main() {
	// Optional .env for local defaults; absence is fine
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	var runs ports.RunRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("connecting to database: %v", err)
		}
		defer db.Close()
		if err := postgres.Migrate(context.Background(), db); err != nil {
			log.Fatalf("migrating database: %v", err)
		}
		runs = postgres.NewRunRepository(db)
		internal.DefaultLogger.Info("run persistence enabled")
	} else {
		internal.DefaultLogger.Warn("DATABASE_URL not set; runs will not be persisted")
	}

	service := app.NewRarefactionService(engine.New(rng.New(), cfg.Engine.EffectiveWorkers()), runs, nil)
	server := api.NewServer(service)
	if err := server.Start(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
