package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/highway-survey-etl/internal/config"
	"github.com/couchcryptid/highway-survey-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces one message per segment document to a Kafka topic.
// It implements pipeline.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured segment topic.
// Messages are keyed by segment so every import of a segment lands on the
// same partition.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes and writes all segments in a single WriteMessages call.
func (p *Publisher) Publish(ctx context.Context, segments []domain.Segment) error {
	if len(segments) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(segments))
	for i := range segments {
		msg, err := serializeToMessage(segments[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d segments: %w", len(msgs), err)
	}
	p.logger.Debug("segments published", "topic", p.writer.Topic, "count", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a Segment into a Kafka message.
func serializeToMessage(seg domain.Segment) (kafkago.Message, error) {
	data, err := json.Marshal(seg)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize segment %s: %w", seg.Key(), err)
	}
	return kafkago.Message{
		Key:   []byte(seg.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "highway", Value: []byte(seg.Highway)},
			{Key: "import_id", Value: []byte(seg.ImportID)},
			{Key: "imported_at", Value: []byte(seg.ImportedAt.Format(time.RFC3339))},
		},
	}, nil
}
