package domain

import "time"

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// PickerRegisteredEvent is published when a picker is added to the shift
type PickerRegisteredEvent struct {
	PickerID     string    `json:"pickerId"`
	Name         string    `json:"name"`
	Target       int       `json:"target"`
	RegisteredAt time.Time `json:"registeredAt"`
}

func (e *PickerRegisteredEvent) EventType() string    { return "wms.labor.picker-registered" }
func (e *PickerRegisteredEvent) OccurredAt() time.Time { return e.RegisteredAt }

// HourlyLinesRecordedEvent is published when an hour's line count is written
type HourlyLinesRecordedEvent struct {
	PickerID      string    `json:"pickerId"`
	Hour          int       `json:"hour"`
	Lines         int       `json:"lines"`
	PreviousLines int       `json:"previousLines"`
	Performance   int       `json:"performance"`
	Target        int       `json:"target"`
	RecordedAt    time.Time `json:"recordedAt"`
}

func (e *HourlyLinesRecordedEvent) EventType() string    { return "wms.labor.performance-recorded" }
func (e *HourlyLinesRecordedEvent) OccurredAt() time.Time { return e.RecordedAt }

// PickerTargetChangedEvent is published when a picker's daily target changes
type PickerTargetChangedEvent struct {
	PickerID       string    `json:"pickerId"`
	PreviousTarget int       `json:"previousTarget"`
	Target         int       `json:"target"`
	ChangedAt      time.Time `json:"changedAt"`
}

func (e *PickerTargetChangedEvent) EventType() string    { return "wms.labor.picker-target-changed" }
func (e *PickerTargetChangedEvent) OccurredAt() time.Time { return e.ChangedAt }

// PickerStatusChangedEvent is published on active/break/offline transitions
type PickerStatusChangedEvent struct {
	PickerID       string    `json:"pickerId"`
	PreviousStatus string    `json:"previousStatus"`
	Status         string    `json:"status"`
	ChangedAt      time.Time `json:"changedAt"`
}

func (e *PickerStatusChangedEvent) EventType() string    { return "wms.labor.picker-status-changed" }
func (e *PickerStatusChangedEvent) OccurredAt() time.Time { return e.ChangedAt }
