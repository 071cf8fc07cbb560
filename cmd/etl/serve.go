package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/highway-survey-etl/internal/adapter/cache"
	httpadapter "github.com/couchcryptid/highway-survey-etl/internal/adapter/http"
	mongoadapter "github.com/couchcryptid/highway-survey-etl/internal/adapter/mongo"
	"github.com/couchcryptid/highway-survey-etl/internal/config"
	"github.com/couchcryptid/highway-survey-etl/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the lane query API over the segment collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runServe(cmd.Context(), cfg, observability.NewLogger(cfg))
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	store, err := mongoadapter.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(store, cfg, logger)

	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Warn("index creation failed", "error", err)
	}

	finder := cache.NewCachedFinder(store, cfg.CacheSize, cfg.CacheTTL, clockwork.NewRealClock(), metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, store, finder, metrics, logger)
	logger.Info("query cache enabled", "size", cfg.CacheSize, "ttl", cfg.CacheTTL)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
