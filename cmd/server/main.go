package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jibsearch/backend/config"
	"github.com/jibsearch/backend/internal/app"
	httpDelivery "github.com/jibsearch/backend/internal/delivery/http"
	"github.com/jibsearch/backend/internal/observability"
)

const version = "2.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "jibsearch-backend",
	})
	metrics := observability.NewMetrics("jibsearch-backend")

	logger.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("mode", cfg.Search.Mode).
		Str("cache", cfg.Cache.Type).
		Bool("model_configured", cfg.ModelConfigured()).
		Msg("starting JIB search backend")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger, metrics)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise")
	}

	// Searches degrade to empty results while the catalog is down
	if err := application.Store.Ping(ctx); err != nil {
		logger.Warn().Err(err).Msg("catalog store unreachable at startup")
	}

	handler := httpDelivery.NewHandler(application.Search, application.Catalog, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger, metrics)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	if err := application.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("closing resources failed")
	}
}
