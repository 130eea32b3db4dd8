package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/picker-performance-service/internal/domain"
	"github.com/wms-platform/picker-performance-service/pkg/cloudevents"
	"github.com/wms-platform/picker-performance-service/pkg/kafka"
	"github.com/wms-platform/picker-performance-service/pkg/mongodb"
	"github.com/wms-platform/picker-performance-service/pkg/outbox"
	outboxMongo "github.com/wms-platform/picker-performance-service/pkg/outbox/mongodb"
)

const pickersCollection = "pickers"

type PickerRepository struct {
	client       *mongodb.InstrumentedClient
	collection   *mongo.Collection
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *cloudevents.EventFactory
}

func NewPickerRepository(client *mongodb.InstrumentedClient, eventFactory *cloudevents.EventFactory) *PickerRepository {
	db := client.Database()
	repo := &PickerRepository{
		client:       client,
		collection:   db.Collection(pickersCollection),
		outboxRepo:   outboxMongo.NewOutboxRepository(db),
		eventFactory: eventFactory,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	repo.ensureIndexes(ctx)
	_ = repo.outboxRepo.EnsureIndexes(ctx)

	return repo
}

func (r *PickerRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "pickerId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	}
	_, _ = r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save upserts the picker and writes its pending domain events to the outbox
// in the same transaction.
func (r *PickerRepository) Save(ctx context.Context, picker *domain.Picker) error {
	picker.UpdatedAt = time.Now().UTC()

	err := r.client.Observe(ctx, pickersCollection, "save", func(ctx context.Context) error {
		return r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			opts := options.Update().SetUpsert(true)
			filter := bson.M{"pickerId": picker.PickerID}
			update := bson.M{"$set": picker}

			if _, err := r.collection.UpdateOne(sessCtx, filter, update, opts); err != nil {
				return fmt.Errorf("failed to save picker: %w", err)
			}

			outboxEvents, err := r.toOutboxEvents(sessCtx, picker)
			if err != nil {
				return err
			}
			if len(outboxEvents) > 0 {
				if err := r.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
					return fmt.Errorf("failed to save outbox events: %w", err)
				}
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	picker.ClearDomainEvents()
	return nil
}

func (r *PickerRepository) toOutboxEvents(ctx context.Context, picker *domain.Picker) ([]*outbox.OutboxEvent, error) {
	events := picker.GetDomainEvents()
	outboxEvents := make([]*outbox.OutboxEvent, 0, len(events))

	for _, event := range events {
		var cloudEvent *cloudevents.WMSCloudEvent
		switch e := event.(type) {
		case *domain.PickerRegisteredEvent:
			cloudEvent = r.eventFactory.CreateEventAt(ctx, cloudevents.PickerRegistered, "picker/"+e.PickerID, e, e.OccurredAt())
		case *domain.HourlyLinesRecordedEvent:
			cloudEvent = r.eventFactory.CreateEventAt(ctx, cloudevents.HourlyLinesRecorded, "picker/"+e.PickerID, e, e.OccurredAt())
		case *domain.PickerTargetChangedEvent:
			cloudEvent = r.eventFactory.CreateEventAt(ctx, cloudevents.PickerTargetChanged, "picker/"+e.PickerID, e, e.OccurredAt())
		case *domain.PickerStatusChangedEvent:
			cloudEvent = r.eventFactory.CreateEventAt(ctx, cloudevents.PickerStatusChanged, "picker/"+e.PickerID, e, e.OccurredAt())
		default:
			continue
		}

		outboxEvent, err := outbox.NewOutboxEventFromCloudEvent(picker.PickerID, "Picker", kafka.Topics.LaborEvents, cloudEvent)
		if err != nil {
			return nil, fmt.Errorf("failed to create outbox event: %w", err)
		}
		outboxEvents = append(outboxEvents, outboxEvent)
	}
	return outboxEvents, nil
}

func (r *PickerRepository) FindByID(ctx context.Context, pickerID string) (*domain.Picker, error) {
	var picker domain.Picker
	err := r.client.Observe(ctx, pickersCollection, "find_one", func(ctx context.Context) error {
		return r.collection.FindOne(ctx, bson.M{"pickerId": pickerID}).Decode(&picker)
	})
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &picker, nil
}

// FindAll returns pickers in registration order. A limit of zero or less returns every picker.
func (r *PickerRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.Picker, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "pickerId", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	return r.find(ctx, "find", bson.M{}, opts)
}

func (r *PickerRepository) FindByStatus(ctx context.Context, status domain.PickerStatus) ([]*domain.Picker, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "pickerId", Value: 1}})
	return r.find(ctx, "find_by_status", bson.M{"status": status}, opts)
}

func (r *PickerRepository) find(ctx context.Context, operation string, filter bson.M, opts *options.FindOptions) ([]*domain.Picker, error) {
	pickers := make([]*domain.Picker, 0)
	err := r.client.Observe(ctx, pickersCollection, operation, func(ctx context.Context) error {
		cursor, err := r.collection.Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &pickers)
	})
	return pickers, err
}

func (r *PickerRepository) Delete(ctx context.Context, pickerID string) error {
	return r.client.Observe(ctx, pickersCollection, "delete", func(ctx context.Context) error {
		_, err := r.collection.DeleteOne(ctx, bson.M{"pickerId": pickerID})
		return err
	})
}

func (r *PickerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.client.Observe(ctx, pickersCollection, "count", func(ctx context.Context) error {
		var err error
		count, err = r.collection.CountDocuments(ctx, bson.M{})
		return err
	})
	return count, err
}

// GetOutboxRepository returns the outbox repository for this service
func (r *PickerRepository) GetOutboxRepository() outbox.Repository {
	return r.outboxRepo
}
