package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iho/cashledger/internal/infrastructure/config"
	"github.com/iho/cashledger/internal/infrastructure/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := newApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to start")
	}
	defer application.close()

	if application.rateLimiter != nil {
		go cleanupLimiters(ctx, application.rateLimiter, time.Hour, appLogger)
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      application.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		appLogger.Info().
			Str("port", cfg.HTTPPort).
			Str("storage", cfg.StorageBackend).
			Str("vault_policy", cfg.VaultPolicy).
			Msg("starting server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !isServerClosed(err) {
			appLogger.Error().Err(err).Msg("server failed")
			return
		}
	}

	appLogger.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	appLogger.Info().Msg("server stopped")
}
