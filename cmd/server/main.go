/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the QDue scheduling engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse configuration from environment
  2. Initialize SQLite store and seed the standard QuattroDue scheme
  3. Build the schedule engine over the store
  4. Configure HTTP router
  5. Start server with graceful shutdown

ENVIRONMENT:
  QDUE_ADDR       listen address (default: :8080)
  QDUE_DB_PATH    SQLite database path (default: qdue.db)
                  Use ":memory:" for an in-memory database
  QDUE_LOG_LEVEL  zerolog level (default: info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: database implementation
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/calvuzs3/qdue-engine/api"
	"github.com/calvuzs3/qdue-engine/quattrodue"
	"github.com/calvuzs3/qdue-engine/schedule"
	"github.com/calvuzs3/qdue-engine/store/sqlite"
)

type config struct {
	Addr     string `env:"QDUE_ADDR" envDefault:":8080"`
	DBPath   string `env:"QDUE_DB_PATH" envDefault:"qdue.db"`
	LogLevel string `env:"QDUE_LOG_LEVEL" envDefault:"info"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("parse config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer store.Close()

	if err := quattrodue.Seed(context.Background(), store, store); err != nil {
		log.Fatal().Err(err).Msg("seed standard scheme")
	}

	engine := schedule.NewScheduleEngine(
		store, store, store, store,
		quattrodue.ReferenceDate,
		log,
	)

	handler := api.NewHandler(store, engine, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}
