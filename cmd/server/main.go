package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/parley-protocol/parley/internal/api"
	"github.com/parley-protocol/parley/internal/bot"
	"github.com/parley-protocol/parley/internal/config"
	"github.com/parley-protocol/parley/internal/crypto"
	"github.com/parley-protocol/parley/internal/hub"
	"github.com/parley-protocol/parley/internal/keyring"
	"github.com/parley-protocol/parley/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Initialize participant directory: PostgreSQL when configured, SQLite
	// for development.
	var db store.DataStore
	if cfg.DatabaseURL != "" {
		logger.Info().Msg("running database migrations...")
		if err := store.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		logger.Info().Msg("migrations completed")

		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		defer pgStore.Close()
		db = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, os.Getenv("SQLITE_PATH"))
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		defer sqliteStore.Close()
		db = sqliteStore
		logger.Info().Msg("using SQLite participant directory")
	}

	// Initialize Redis store
	redisURL := cfg.RedisURL
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisStore, err := store.NewRedisStore(ctx, redisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisStore.Close()
	logger.Info().Msg("connected to Redis")

	// Load or generate the server/responder signing identity. The private
	// key stays in this ring for the process lifetime; it is never logged
	// and never leaves the process.
	ring := keyring.NewRing()
	if cfg.ServerKeyFile != "" {
		priv, err := keyring.LoadPrivateKeyFile(cfg.ServerKeyFile)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load server key")
		}
		ring.SetIdentity("server", priv)
		logger.Info().Str("key_file", cfg.ServerKeyFile).Msg("server identity loaded")
	} else {
		priv, err := crypto.GenerateKeyPair()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to generate server key")
		}
		ring.SetIdentity("server", priv)
		logger.Warn().Msg("using ephemeral server identity; signatures will not survive restart")
	}

	keys := keyring.NewDirectory(ring, db)
	fanout := hub.New(logger)
	responder := bot.NewResponder(redisStore)

	// Create router
	router := api.NewRouter(cfg, logger, db, redisStore, keys, fanout, responder)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting Parley server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
