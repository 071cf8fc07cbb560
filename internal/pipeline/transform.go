package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/highway-survey-etl/internal/domain"
	"github.com/google/uuid"
)

// SurveyTransformer implements Transformer using the domain transform with a
// fresh import ID per sheet.
type SurveyTransformer struct {
	opts   domain.Options
	logger *slog.Logger
	newID  func() string
}

// NewTransformer creates a SurveyTransformer with the given limits and
// grouping options.
func NewTransformer(opts domain.Options, logger *slog.Logger) *SurveyTransformer {
	return &SurveyTransformer{
		opts:   opts,
		logger: logger,
		newID:  uuid.NewString,
	}
}

func (t *SurveyTransformer) Transform(ctx context.Context, table domain.RawTable) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}

	result := domain.TransformTable(table, t.opts)

	if len(result.Schema.Lanes) == 0 {
		t.logger.Warn("no lane columns found", "sheet", table.Sheet)
	} else {
		t.logger.Info("lanes discovered", "sheet", table.Sheet, "lanes", result.Schema.Lanes)
	}
	if missing := result.Schema.MissingColumns(); len(missing) > 0 {
		t.logger.Warn("expected columns missing, values treated as absent",
			"sheet", table.Sheet,
			"columns", missing,
		)
	}
	if result.Schema.Dropped > 0 {
		t.logger.Debug("unnamed columns dropped", "count", result.Schema.Dropped)
	}

	batch := Batch{ImportID: t.newID(), Result: result}
	domain.StampImport(batch.Segments, batch.ImportID)
	return batch, nil
}
