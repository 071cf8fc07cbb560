package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/highway-survey-etl/internal/adapter/excel"
	kafkaadapter "github.com/couchcryptid/highway-survey-etl/internal/adapter/kafka"
	mongoadapter "github.com/couchcryptid/highway-survey-etl/internal/adapter/mongo"
	"github.com/couchcryptid/highway-survey-etl/internal/config"
	"github.com/couchcryptid/highway-survey-etl/internal/domain"
	"github.com/couchcryptid/highway-survey-etl/internal/observability"
	"github.com/couchcryptid/highway-survey-etl/internal/pipeline"
	"github.com/spf13/cobra"
)

type importOptions struct {
	sheet  string
	dryRun bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Load a survey workbook into the segment collection",
		Long: "Reads a two-header survey sheet (xlsx or csv), builds one document per\n" +
			"segment with classified lanes and inserts them in a single bulk write.\n" +
			"The file defaults to INPUT_FILE.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if len(args) == 1 {
				cfg.InputFile = args[0]
			}
			if cmd.Flags().Changed("sheet") {
				cfg.SheetName = opts.sheet
			}
			logger := observability.NewLogger(cfg)
			return runImport(cmd.Context(), cfg, opts, observability.NewMetrics(), logger, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Sheet to read (default: SHEET_NAME or the first sheet)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the documents as JSON instead of writing them")

	return cmd
}

func runImport(ctx context.Context, cfg *config.Config, opts importOptions, metrics *observability.Metrics, logger *slog.Logger, out io.Writer) error {
	reader := excel.NewReader(cfg.InputFile, cfg.SheetName, logger)
	transformer := pipeline.NewTransformer(transformOptions(cfg), logger)

	var (
		loader    pipeline.Loader
		publisher pipeline.Publisher
		printer   *jsonLoader
	)
	if opts.dryRun {
		printer = &jsonLoader{w: out}
		loader = printer
	} else {
		store, err := mongoadapter.Connect(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore(store, cfg, logger)

		if err := store.EnsureIndexes(ctx); err != nil {
			logger.Warn("index creation failed", "error", err)
		}
		loader = store

		if cfg.PublishEnabled() {
			pub := kafkaadapter.NewPublisher(cfg, logger)
			defer func() {
				if err := pub.Close(); err != nil {
					logger.Error("kafka publisher close error", "error", err)
				}
			}()
			publisher = pub
		}
	}

	p := pipeline.New(reader, transformer, loader, publisher, logger, metrics)
	_, runErr := p.Run(ctx)

	// The pipeline skips the loader for an empty batch.
	if printer != nil && runErr == nil && !printer.wrote {
		if _, err := printer.LoadBatch(ctx, []domain.Segment{}); err != nil {
			return err
		}
	}

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
		defer cancel()
		if err := metrics.Push(pushCtx, cfg.PushgatewayURL, hostname()); err != nil {
			logger.Warn("metrics push failed", "error", err)
		}
	}
	return runErr
}

// jsonLoader writes segments to w as an indented JSON array instead of a database.
type jsonLoader struct {
	w     io.Writer
	wrote bool
}

func (l *jsonLoader) LoadBatch(_ context.Context, segments []domain.Segment) (int, error) {
	enc := json.NewEncoder(l.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(segments); err != nil {
		return 0, fmt.Errorf("encode segments: %w", err)
	}
	l.wrote = true
	return len(segments), nil
}

func closeStore(store *mongoadapter.Store, cfg *config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		logger.Error("mongo disconnect error", "error", err)
	}
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
