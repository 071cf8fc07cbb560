package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/highway-survey-etl/internal/config"
	"github.com/couchcryptid/highway-survey-etl/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using process environment", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("etl failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "etl",
		Short:         "Import highway condition surveys and serve lane queries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newImportCmd(), newServeCmd())
	return root
}

// transformOptions maps the limit and grouping settings onto the domain transform.
func transformOptions(cfg *config.Config) domain.Options {
	return domain.Options{
		Defaults: domain.Limits{
			IRI:       cfg.DefaultIRILimit,
			Rutting:   cfg.DefaultRuttingLimit,
			Cracking:  cfg.DefaultCrackingLimit,
			Ravelling: cfg.DefaultRavellingLimit,
		},
		MergeRows: cfg.MergeSegmentRows,
	}
}
