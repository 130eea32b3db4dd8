package outbox

import (
	"context"
	"time"
)

// Repository persists outbox events
type Repository interface {
	Save(ctx context.Context, event *OutboxEvent) error
	SaveAll(ctx context.Context, events []*OutboxEvent) error
	// FindUnpublished returns unpublished events still under their retry limit, oldest first.
	FindUnpublished(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkPublished(ctx context.Context, eventID string) error
	IncrementRetry(ctx context.Context, eventID string, errorMsg string) error
	// DeletePublished removes events published before cutoff and returns how many were removed.
	DeletePublished(ctx context.Context, cutoff time.Time) (int64, error)
}
