package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pesaguru-backend/internal/config"
	"pesaguru-backend/internal/interfaces/router"
	"pesaguru-backend/internal/pkg/logger"
	"pesaguru-backend/internal/workers/allocationreview"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load: " + err.Error())
	}
	logger.Setup(cfg.LogLevel, cfg.Env != "production")

	app, deps, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create failed")
	}

	// Verify connections before accepting traffic.
	if deps.DB != nil {
		sqlDB, err := deps.DB.DB()
		if err != nil {
			log.Fatal().Err(err).Msg("postgres: get DB")
		}
		if err := sqlDB.Ping(); err != nil {
			log.Fatal().Err(err).Msg("postgres connection failed")
		}
		log.Info().Msg("postgres connected")
	}
	if deps.Redis != nil {
		if err := deps.Redis.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		log.Info().Msg("redis connected")
	}

	var scheduler *allocationreview.Scheduler
	if deps.Goals != nil {
		scheduler = allocationreview.New(deps.Goals, cfg.AllocationReviewSchedule)
		if err := scheduler.Start(); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.AllocationReviewSchedule).Msg("allocation review scheduler failed to start")
		}
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msgf("health check: http://localhost:%s/health/json", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	if scheduler != nil {
		_ = scheduler.Stop()
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if deps.Redis != nil {
		_ = deps.Redis.Close()
	}
}
