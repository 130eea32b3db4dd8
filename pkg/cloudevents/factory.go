package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wms-platform/picker-performance-service/pkg/logging"
)

// EventFactory stamps CloudEvents envelopes for one source
type EventFactory struct {
	source string
	now    func() time.Time
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source, now: time.Now}
}

// Source returns the factory's source URI
func (f *EventFactory) Source() string {
	return f.source
}

// CreateEvent wraps data in an envelope. The correlation id is taken from ctx when present.
func (f *EventFactory) CreateEvent(ctx context.Context, eventType, subject string, data interface{}) *WMSCloudEvent {
	event := &WMSCloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            f.now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}
	if id, ok := ctx.Value(logging.CorrelationIDKey).(string); ok {
		event.CorrelationID = id
	}
	return event
}

// CreateEventAt is CreateEvent with an explicit occurrence time.
func (f *EventFactory) CreateEventAt(ctx context.Context, eventType, subject string, data interface{}, at time.Time) *WMSCloudEvent {
	event := f.CreateEvent(ctx, eventType, subject, data)
	if !at.IsZero() {
		event.Time = at.UTC()
	}
	return event
}
