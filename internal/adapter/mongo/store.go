package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/highway-survey-etl/internal/config"
	"github.com/couchcryptid/highway-survey-etl/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store writes segment documents to a MongoDB collection and reads them back
// for the query API. It implements pipeline.Loader and domain.SegmentFinder.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
	logger     *slog.Logger
}

// Connect opens a client for the configured URI and pings the primary.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetConnectTimeout(cfg.MongoTimeout).
		SetServerSelectionTimeout(cfg.MongoTimeout)
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("mongo connected", "database", cfg.MongoDatabase, "collection", cfg.MongoCollection)
	return &Store{
		client:     client,
		collection: client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection),
		timeout:    cfg.MongoTimeout,
		logger:     logger,
	}, nil
}

// LoadBatch inserts all segments in one ordered bulk write and returns the
// number of documents stored. An empty batch is a no-op.
func (s *Store) LoadBatch(ctx context.Context, segments []domain.Segment) (int, error) {
	if len(segments) == 0 {
		return 0, nil
	}
	docs := make([]any, len(segments))
	for i := range segments {
		docs[i] = toDocument(segments[i])
	}

	res, err := s.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		var bwe mongo.BulkWriteException
		if errors.As(err, &bwe) {
			s.logger.Error("bulk insert partially failed", "write_errors", len(bwe.WriteErrors))
		}
		return 0, fmt.Errorf("insert segments: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// FindByHighway returns every segment of a highway ordered by start chainage.
func (s *Store) FindByHighway(ctx context.Context, highway string) ([]domain.Segment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "startChainage", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.collection.Find(ctx, bson.M{"highway": highway}, opts)
	if err != nil {
		return nil, fmt.Errorf("find segments of %q: %w", highway, err)
	}

	var docs []segmentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode segments of %q: %w", highway, err)
	}

	segments := make([]domain.Segment, len(docs))
	for i := range docs {
		segments[i] = fromDocument(docs[i])
	}
	return segments, nil
}

// EnsureIndexes creates the lookup indexes used by the query API.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "highway", Value: 1}, {Key: "startChainage", Value: 1}}},
		{Keys: bson.D{{Key: "importId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// CheckReadiness pings the primary.
func (s *Store) CheckReadiness(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo unreachable: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
