package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// PickerRepository defines the interface for picker persistence
type PickerRepository interface {
	Save(ctx context.Context, picker *Picker) error
	FindByID(ctx context.Context, pickerID string) (*Picker, error)
	FindAll(ctx context.Context, limit, offset int) ([]*Picker, error)
	FindByStatus(ctx context.Context, status PickerStatus) ([]*Picker, error)
	Delete(ctx context.Context, pickerID string) error
	Count(ctx context.Context) (int64, error)
}

// SnapshotRepository stores named dashboard snapshots
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *DashboardSnapshot) error
	FindByName(ctx context.Context, name string) (*DashboardSnapshot, error)
	List(ctx context.Context) ([]SnapshotSummary, error)
	Delete(ctx context.Context, name string) error
}

var ErrSnapshotNameRequired = errors.New("snapshot name is required")

// DashboardSnapshot is a computed dashboard frozen under a user-chosen name.
// Payload holds the JSON encoding of the dashboard as it was served.
type DashboardSnapshot struct {
	Name        string    `bson:"name" json:"name"`
	SavedBy     string    `bson:"savedBy" json:"savedBy"`
	SavedAt     time.Time `bson:"savedAt" json:"savedAt"`
	EvaluatedAt time.Time `bson:"evaluatedAt" json:"evaluatedAt"`
	PickerCount int       `bson:"pickerCount" json:"pickerCount"`
	Payload     []byte    `bson:"payload" json:"-"`
}

// SnapshotSummary is the listing view of a snapshot, without payload
type SnapshotSummary struct {
	Name        string    `bson:"name" json:"name"`
	SavedBy     string    `bson:"savedBy" json:"savedBy"`
	SavedAt     time.Time `bson:"savedAt" json:"savedAt"`
	EvaluatedAt time.Time `bson:"evaluatedAt" json:"evaluatedAt"`
	PickerCount int       `bson:"pickerCount" json:"pickerCount"`
}

// NewDashboardSnapshot validates the name and stamps SavedAt
func NewDashboardSnapshot(name, savedBy string, evaluatedAt time.Time, pickerCount int, payload []byte) (*DashboardSnapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrSnapshotNameRequired
	}
	return &DashboardSnapshot{
		Name:        name,
		SavedBy:     savedBy,
		SavedAt:     time.Now().UTC(),
		EvaluatedAt: evaluatedAt,
		PickerCount: pickerCount,
		Payload:     payload,
	}, nil
}
