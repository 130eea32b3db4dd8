package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/picker-performance-service/pkg/outbox"
)

// DefaultCollectionName is the outbox collection
const DefaultCollectionName = "outbox_events"

// OutboxRepository implements outbox.Repository for MongoDB
type OutboxRepository struct {
	collection *mongo.Collection
}

// NewOutboxRepository creates a new MongoDB outbox repository
func NewOutboxRepository(db *mongo.Database) *OutboxRepository {
	return &OutboxRepository{collection: db.Collection(DefaultCollectionName)}
}

// Save inserts one event. Pass a session context to join the caller's transaction.
func (r *OutboxRepository) Save(ctx context.Context, event *outbox.OutboxEvent) error {
	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to save outbox event: %w", err)
	}
	return nil
}

// SaveAll inserts events in one round trip
func (r *OutboxRepository) SaveAll(ctx context.Context, events []*outbox.OutboxEvent) error {
	if len(events) == 0 {
		return nil
	}

	docs := make([]interface{}, len(events))
	for i, event := range events {
		docs[i] = event
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to save outbox events: %w", err)
	}
	return nil
}

// FindUnpublished retrieves unpublished events below the retry limit, oldest first.
func (r *OutboxRepository) FindUnpublished(ctx context.Context, limit int) ([]*outbox.OutboxEvent, error) {
	filter := bson.M{
		"publishedAt": bson.M{"$exists": false},
		"$expr":       bson.M{"$lt": bson.A{"$retryCount", "$maxRetries"}},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find unpublished events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*outbox.OutboxEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode outbox events: %w", err)
	}
	return events, nil
}

// MarkPublished stamps publishedAt
func (r *OutboxRepository) MarkPublished(ctx context.Context, eventID string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$set": bson.M{"publishedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark event as published: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("outbox event not found: %s", eventID)
	}
	return nil
}

// IncrementRetry bumps retryCount and records the last error
func (r *OutboxRepository) IncrementRetry(ctx context.Context, eventID string, errorMsg string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{
			"$inc": bson.M{"retryCount": 1},
			"$set": bson.M{"lastError": errorMsg},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment retry count: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("outbox event not found: %s", eventID)
	}
	return nil
}

// DeletePublished removes events published before cutoff
func (r *OutboxRepository) DeletePublished(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{
		"publishedAt": bson.M{"$exists": true, "$lt": cutoff},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete published events: %w", err)
	}
	return result.DeletedCount, nil
}

// EnsureIndexes creates the indexes the publisher's queries rely on
func (r *OutboxRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "publishedAt", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("idx_publishedAt_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "aggregateId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("idx_aggregateId_createdAt"),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create outbox indexes: %w", err)
	}
	return nil
}
