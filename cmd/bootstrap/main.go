// Command bootstrap seeds an empty drug catalog from the e-drug open API.
// Running it against a populated catalog is a no-op.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mediguide-api/internal/config"
	"github.com/mediguide-api/internal/database"
	"github.com/mediguide-api/internal/druginfo"
	"github.com/mediguide-api/internal/repository"
	"github.com/mediguide-api/internal/service"
	"github.com/mediguide-api/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Server.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	services := service.NewServices(repository.New(db), service.Externals{
		Source: druginfo.NewClient(&cfg.DrugAPI, log),
	}, cfg, log)

	result, err := services.Catalog.Bootstrap(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Bootstrap failed")
		db.Close()
		os.Exit(1)
	}

	log.Info().
		Bool("skipped", result.Skipped).
		Int("fetched", result.Fetched).
		Int("inserted", result.Inserted).
		Int64("duration_ms", result.Duration).
		Msg("Bootstrap finished")
}
