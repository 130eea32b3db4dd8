package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/picker-performance-service/internal/domain"
	"github.com/wms-platform/picker-performance-service/pkg/mongodb"
)

const snapshotsCollection = "dashboard_snapshots"

// SnapshotRepository stores named dashboard snapshots, one document per name
type SnapshotRepository struct {
	client     *mongodb.InstrumentedClient
	collection *mongo.Collection
}

func NewSnapshotRepository(client *mongodb.InstrumentedClient) *SnapshotRepository {
	repo := &SnapshotRepository{
		client:     client,
		collection: client.Database().Collection(snapshotsCollection),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = repo.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "savedAt", Value: -1}}},
	})

	return repo
}

func (r *SnapshotRepository) Save(ctx context.Context, snapshot *domain.DashboardSnapshot) error {
	return r.client.Observe(ctx, snapshotsCollection, "save", func(ctx context.Context) error {
		opts := options.Replace().SetUpsert(true)
		_, err := r.collection.ReplaceOne(ctx, bson.M{"name": snapshot.Name}, snapshot, opts)
		return err
	})
}

func (r *SnapshotRepository) FindByName(ctx context.Context, name string) (*domain.DashboardSnapshot, error) {
	var snapshot domain.DashboardSnapshot
	err := r.client.Observe(ctx, snapshotsCollection, "find_one", func(ctx context.Context) error {
		return r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&snapshot)
	})
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// List returns snapshot summaries, newest first, without payloads
func (r *SnapshotRepository) List(ctx context.Context) ([]domain.SnapshotSummary, error) {
	summaries := make([]domain.SnapshotSummary, 0)
	err := r.client.Observe(ctx, snapshotsCollection, "list", func(ctx context.Context) error {
		opts := options.Find().
			SetSort(bson.D{{Key: "savedAt", Value: -1}}).
			SetProjection(bson.M{"payload": 0})
		cursor, err := r.collection.Find(ctx, bson.M{}, opts)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &summaries)
	})
	return summaries, err
}

func (r *SnapshotRepository) Delete(ctx context.Context, name string) error {
	return r.client.Observe(ctx, snapshotsCollection, "delete", func(ctx context.Context) error {
		_, err := r.collection.DeleteOne(ctx, bson.M{"name": name})
		return err
	})
}
