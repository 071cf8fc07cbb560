package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/highway-survey-etl/internal/domain"
	"github.com/couchcryptid/highway-survey-etl/internal/observability"
)

// Extractor reads one survey sheet from the source.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawTable, error)
}

// Transformer converts a survey sheet into a batch of segment documents.
type Transformer interface {
	Transform(ctx context.Context, table domain.RawTable) (Batch, error)
}

// Loader writes a batch of segments to the sink and returns how many were stored.
type Loader interface {
	LoadBatch(ctx context.Context, segments []domain.Segment) (int, error)
}

// Publisher fans stored segments out to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, segments []domain.Segment) error
}

// Batch is the transformed content of one sheet, tagged with its import ID.
type Batch struct {
	ImportID string
	domain.Result
}

// Summary reports the outcome of one run.
type Summary struct {
	ImportID       string        `json:"importId"`
	Source         string        `json:"source"`
	Sheet          string        `json:"sheet"`
	Lanes          []string      `json:"lanes"`
	MissingColumns []string      `json:"missingColumns,omitempty"`
	Stats          domain.Stats  `json:"stats"`
	Inserted       int           `json:"inserted"`
	Published      int           `json:"published"`
	Duration       time.Duration `json:"duration"`
}

// Pipeline runs a single extract-transform-load pass over one sheet.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	publisher   Publisher
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline with the given stages and observability. A nil
// publisher disables fan-out.
func New(e Extractor, t Transformer, l Loader, pub Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		publisher:   pub,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run extracts the sheet, transforms every row and writes all segments in one
// bulk insert. Extract, transform and load failures abort the run; a publish
// failure is logged and counted but does not.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	p.metrics.ImportRunning.Set(1)
	defer p.metrics.ImportRunning.Set(0)

	table, err := p.extractor.Extract(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("extract: %w", err)
	}
	p.metrics.RowsRead.Add(float64(len(table.Rows)))

	batch, err := p.transformer.Transform(ctx, table)
	if err != nil {
		return Summary{}, fmt.Errorf("transform: %w", err)
	}
	p.recordBatch(batch)

	summary := Summary{
		ImportID:       batch.ImportID,
		Source:         table.Source,
		Sheet:          table.Sheet,
		Lanes:          batch.Schema.Lanes,
		MissingColumns: batch.Schema.MissingColumns(),
		Stats:          batch.Stats,
	}

	if len(batch.Segments) == 0 {
		p.logger.Warn("no segments produced, skipping insert",
			"import_id", batch.ImportID,
			"rows", batch.Stats.Rows,
		)
		return p.finish(summary, start), nil
	}

	inserted, err := p.loader.LoadBatch(ctx, batch.Segments)
	if err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(batch.Segments))
		return summary, fmt.Errorf("load: %w", err)
	}
	p.metrics.DocumentsInserted.Add(float64(inserted))
	summary.Inserted = inserted

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, batch.Segments); err != nil {
			p.logger.Warn("publish segments failed", "error", err, "import_id", batch.ImportID)
			p.metrics.PublishErrors.Inc()
		} else {
			summary.Published = len(batch.Segments)
		}
	}

	return p.finish(summary, start), nil
}

func (p *Pipeline) recordBatch(b Batch) {
	s := b.Stats
	p.metrics.SegmentsProduced.Add(float64(s.Segments))
	p.metrics.EmptySegments.Add(float64(s.EmptySegments))
	p.metrics.MergedRows.Add(float64(s.MergedRows))
	p.metrics.LanesProduced.Add(float64(s.Lanes))
	p.metrics.LanesSkipped.Add(float64(s.SkippedLanes))
	p.metrics.CriticalLanes.WithLabelValues("roughness").Add(float64(s.Critical.Roughness))
	p.metrics.CriticalLanes.WithLabelValues("rutDepth").Add(float64(s.Critical.RutDepth))
	p.metrics.CriticalLanes.WithLabelValues("crackPercent").Add(float64(s.Critical.CrackPercent))
	p.metrics.CriticalLanes.WithLabelValues("ravelling").Add(float64(s.Critical.Ravelling))
	p.metrics.LanesDetected.Set(float64(len(b.Schema.Lanes)))
	p.metrics.MissingColumns.Set(float64(len(b.Schema.MissingColumns())))
}

func (p *Pipeline) finish(s Summary, start time.Time) Summary {
	s.Duration = time.Since(start)
	p.metrics.RunDuration.Observe(s.Duration.Seconds())
	p.metrics.LastSuccessfulRun.SetToCurrentTime()

	p.logger.Info("import complete",
		"import_id", s.ImportID,
		"source", s.Source,
		"sheet", s.Sheet,
		"rows", s.Stats.Rows,
		"segments", s.Stats.Segments,
		"lanes", s.Stats.Lanes,
		"inserted", s.Inserted,
		"published", s.Published,
		"duration", s.Duration,
	)
	return s
}
