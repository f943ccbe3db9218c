package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rocksoup/mbtheme/internal/domain"
	"github.com/rocksoup/mbtheme/internal/ports"
)

// resultDocument is the stored shape of one enrichment result.
type resultDocument struct {
	ID         string    `bson:"_id"`
	RunID      string    `bson:"run_id"`
	RecordedAt time.Time `bson:"recorded_at"`
	Outcome    string    `bson:"outcome"`
	Reason     string    `bson:"reason,omitempty"`
	Title      string    `bson:"title"`
	Year       string    `bson:"year,omitempty"`
	PosterURL  string    `bson:"poster_url,omitempty"`
	PostURL    string    `bson:"post_url"`
	Message    string    `bson:"message,omitempty"`
	DryRun     bool      `bson:"dry_run"`
}

func toDocument(id, runID string, at time.Time, r domain.EnrichmentResult) resultDocument {
	return resultDocument{
		ID:         id,
		RunID:      runID,
		RecordedAt: at.UTC(),
		Outcome:    string(r.Outcome),
		Reason:     string(r.Reason),
		Title:      r.Title,
		Year:       r.Year,
		PosterURL:  r.PosterURL,
		PostURL:    r.PostURL,
		Message:    r.Message,
		DryRun:     r.DryRun,
	}
}

func (d resultDocument) entry() domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:         d.ID,
		RunID:      d.RunID,
		RecordedAt: d.RecordedAt.UTC(),
		Result: domain.EnrichmentResult{
			Outcome:   domain.Outcome(d.Outcome),
			Reason:    domain.SkipReason(d.Reason),
			Title:     d.Title,
			Year:      d.Year,
			PosterURL: d.PosterURL,
			PostURL:   d.PostURL,
			Message:   d.Message,
			DryRun:    d.DryRun,
		},
	}
}

// MongoLedger keeps enrichment results in a MongoDB collection.
type MongoLedger struct {
	client  *mongo.Client
	results *mongo.Collection
	now     func() time.Time
	newID   func() string
}

var _ ports.ResultLedger = (*MongoLedger)(nil)

// OpenMongo connects, pings, and ensures the indexes used by Recent.
func OpenMongo(ctx context.Context, uri, database, collection string) (*MongoLedger, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	l := &MongoLedger{
		client:  client,
		results: client.Database(database).Collection(collection),
		now:     time.Now,
		newID:   uuid.NewString,
	}

	_, err = l.results.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recorded_at", Value: -1}}},
		{Keys: bson.D{{Key: "run_id", Value: 1}}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create indexes: %w", err)
	}

	return l, nil
}

// Record inserts one result under runID.
func (l *MongoLedger) Record(ctx context.Context, runID string, result domain.EnrichmentResult) error {
	doc := toDocument(l.newID(), runID, l.now(), result)
	if _, err := l.results.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *MongoLedger) Recent(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := l.results.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find results: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]domain.LedgerEntry, 0)
	for cursor.Next(ctx) {
		var doc resultDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		entries = append(entries, doc.entry())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}
	return entries, nil
}

// Close disconnects the client.
func (l *MongoLedger) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return l.client.Disconnect(ctx)
}
