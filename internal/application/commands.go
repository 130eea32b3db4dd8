package application

import "time"

// CreatePickerCommand registers a picker. An empty PickerID is generated.
type CreatePickerCommand struct {
	PickerID string
	Name     string
	Target   int
	Actor    string
}

// GetPickerQuery retrieves a picker by ID
type GetPickerQuery struct {
	PickerID string
}

// ListPickersQuery lists pickers, optionally filtered by status
type ListPickersQuery struct {
	Status string
	Limit  int
	Offset int
}

// UpdatePickerCommand changes the fields that are set
type UpdatePickerCommand struct {
	PickerID string
	Name     *string
	Target   *int
	Status   *string
	Actor    string
}

// DeletePickerCommand removes a picker
type DeletePickerCommand struct {
	PickerID string
	Actor    string
}

// RecordPerformanceCommand records lines picked by a picker in one shift hour
type RecordPerformanceCommand struct {
	PickerID string
	Hour     int
	Lines    int
	Actor    string
}

// DashboardQuery evaluates dashboard views at At; a zero At means now.
type DashboardQuery struct {
	At time.Time
}

// ConsistencyQuery evaluates consistency for Hour, or the current shift hour when nil
type ConsistencyQuery struct {
	At   time.Time
	Hour *int
}

// HourAnalysisQuery analyzes a single shift hour
type HourAnalysisQuery struct {
	Hour int
}

// LaborEfficiencyQuery scopes the efficiency ratio to one picker, or the team when PickerID is empty
type LaborEfficiencyQuery struct {
	PickerID string
}

// SaveSnapshotCommand stores the dashboard evaluated at At under Name
type SaveSnapshotCommand struct {
	Name    string
	SavedBy string
	At      time.Time
}

// GetSnapshotQuery loads a snapshot by name
type GetSnapshotQuery struct {
	Name string
}

// DeleteSnapshotCommand removes a snapshot
type DeleteSnapshotCommand struct {
	Name  string
	Actor string
}
