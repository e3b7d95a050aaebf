package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mediguide-api/internal/api"
	"github.com/mediguide-api/internal/auth"
	"github.com/mediguide-api/internal/config"
	"github.com/mediguide-api/internal/database"
	"github.com/mediguide-api/internal/druginfo"
	"github.com/mediguide-api/internal/llm"
	"github.com/mediguide-api/internal/repository"
	"github.com/mediguide-api/internal/service"
	"github.com/mediguide-api/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting MediGuide API server...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Server.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Initialize generation providers
	text, closer, err := llm.NewTextGenerator(ctx, &cfg.AI)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize text generator")
	}
	defer closer.Close()
	if cfg.AI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set; AI endpoints will fail upstream")
	}

	// Initialize services
	services := service.NewServices(repos, service.Externals{
		Text:   text,
		Image:  llm.NewOpenAI(&cfg.AI),
		Source: druginfo.NewClient(&cfg.DrugAPI, log),
		Tokens: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	}, cfg, log)

	if cfg.Bootstrap.OnStart {
		result, err := services.Catalog.Bootstrap(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Catalog bootstrap failed, continuing with the current catalog")
		} else {
			log.Info().Bool("skipped", result.Skipped).Int("inserted", result.Inserted).Msg("Catalog bootstrap finished")
		}
	}

	// Optional Redis-backed rate limiting
	var limiter api.RateCounter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, rate limiting fails open")
		}
		limiter = api.NewRedisCounter(rdb)
	}

	// Initialize router
	router := api.NewRouter(services, cfg, limiter, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		return
	}

	log.Info().Msg("Server exited gracefully")
}
