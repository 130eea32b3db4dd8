package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumLines(p *Picker) int {
	total := 0
	for _, h := range p.HourlyData {
		total += h.Lines
	}
	return total
}

// TestNewPicker tests picker creation
func TestNewPicker(t *testing.T) {
	picker, err := NewPicker("P-001", "John Smith", 100)

	require.NoError(t, err)
	require.NotNil(t, picker)
	assert.Equal(t, "P-001", picker.PickerID)
	assert.Equal(t, "John Smith", picker.Name)
	assert.Equal(t, 100, picker.Target)
	assert.Equal(t, 0, picker.Performance)
	assert.Equal(t, PickerStatusActive, picker.Status)
	assert.Equal(t, "09:00", picker.StartTime)
	assert.Equal(t, "17:00", picker.EndTime)
	require.Len(t, picker.HourlyData, HourCount)
	for i, h := range picker.HourlyData {
		assert.Equal(t, FirstHour+i, h.Hour)
		assert.Equal(t, 13, h.Target) // round(100/8)
		assert.Zero(t, h.Lines)
	}
	require.Len(t, picker.Breaks, 2)
	assert.Equal(t, BreakTypeLunch, picker.Breaks[0].Type)
	assert.Equal(t, BreakTypeShort, picker.Breaks[1].Type)

	events := picker.GetDomainEvents()
	require.Len(t, events, 1)
	event, ok := events[0].(*PickerRegisteredEvent)
	require.True(t, ok)
	assert.Equal(t, "P-001", event.PickerID)
	assert.Equal(t, 100, event.Target)
}

func TestNewPicker_Validation(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		pName  string
		target int
		err    error
	}{
		{"empty id", "  ", "John", 100, ErrPickerIDRequired},
		{"empty name", "P-1", "", 100, ErrNameRequired},
		{"negative target", "P-1", "John", -1, ErrInvalidTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			picker, err := NewPicker(tt.id, tt.pName, tt.target)
			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, picker)
		})
	}
}

func TestHourlyTarget(t *testing.T) {
	tests := []struct {
		daily    int
		expected int
	}{
		{0, 0},
		{-5, 0},
		{100, 13},
		{110, 14},
		{120, 15},
		{4, 1},
		{3, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, HourlyTarget(tt.daily), "daily=%d", tt.daily)
	}
}

// TestRecordHourlyLines checks performance stays the sum of hourly lines under repeated writes
func TestRecordHourlyLines(t *testing.T) {
	picker, err := NewPicker("P-001", "Sarah Johnson", 120)
	require.NoError(t, err)
	picker.ClearDomainEvents()

	require.NoError(t, picker.RecordHourlyLines(9, 15))
	require.NoError(t, picker.RecordHourlyLines(10, 12))
	require.NoError(t, picker.RecordHourlyLines(9, 20))

	assert.Equal(t, 32, picker.Performance)
	assert.Equal(t, sumLines(picker), picker.Performance)

	entry := picker.HourEntry(9)
	assert.Equal(t, 20, entry.Lines)
	assert.Equal(t, 15, entry.Target)
	assert.InDelta(t, 20.0/15.0, entry.Efficiency, 1e-9)

	events := picker.GetDomainEvents()
	require.Len(t, events, 3)
	last, ok := events[2].(*HourlyLinesRecordedEvent)
	require.True(t, ok)
	assert.Equal(t, 9, last.Hour)
	assert.Equal(t, 15, last.PreviousLines)
	assert.Equal(t, 20, last.Lines)
	assert.Equal(t, 32, last.Performance)
}

func TestRecordHourlyLines_Errors(t *testing.T) {
	picker, err := NewPicker("P-001", "Mike Wilson", 110)
	require.NoError(t, err)

	assert.ErrorIs(t, picker.RecordHourlyLines(8, 10), ErrInvalidHour)
	assert.ErrorIs(t, picker.RecordHourlyLines(18, 10), ErrInvalidHour)
	assert.ErrorIs(t, picker.RecordHourlyLines(10, -1), ErrNegativeLines)
	assert.Equal(t, 0, picker.Performance)
	assert.Len(t, picker.GetDomainEvents(), 1)
}

func TestRecordHourlyLines_MissingEntryIsInsertedInOrder(t *testing.T) {
	picker := &Picker{PickerID: "P-9", Name: "Sparse", Target: 80,
		HourlyData: []HourlyData{{Hour: 9, Lines: 5}, {Hour: 12, Lines: 7}}}

	require.NoError(t, picker.RecordHourlyLines(10, 6))

	hours := make([]int, 0, len(picker.HourlyData))
	for _, h := range picker.HourlyData {
		hours = append(hours, h.Hour)
	}
	assert.Equal(t, []int{9, 10, 12}, hours)
	assert.Equal(t, 18, picker.Performance)
}

func TestRecordHourlyLines_ZeroTarget(t *testing.T) {
	picker, err := NewPicker("P-001", "Trainee", 0)
	require.NoError(t, err)

	require.NoError(t, picker.RecordHourlyLines(11, 9))
	assert.Equal(t, 0.0, picker.HourEntry(11).Efficiency)
	assert.Equal(t, 9, picker.Performance)
}

func TestHourEntry_Missing(t *testing.T) {
	picker := &Picker{PickerID: "P-1"}
	assert.Equal(t, HourlyData{Hour: 14}, picker.HourEntry(14))
	assert.Zero(t, picker.LinesAt(14))
}

func TestUpdateTarget(t *testing.T) {
	picker, err := NewPicker("P-001", "John Smith", 100)
	require.NoError(t, err)
	require.NoError(t, picker.RecordHourlyLines(9, 16))
	picker.ClearDomainEvents()

	require.NoError(t, picker.UpdateTarget(160))
	for _, h := range picker.HourlyData {
		assert.Equal(t, 20, h.Target)
	}
	assert.InDelta(t, 0.8, picker.HourEntry(9).Efficiency, 1e-9)

	events := picker.GetDomainEvents()
	require.Len(t, events, 1)
	changed, ok := events[0].(*PickerTargetChangedEvent)
	require.True(t, ok)
	assert.Equal(t, 100, changed.PreviousTarget)
	assert.Equal(t, 160, changed.Target)

	// unchanged target emits nothing
	require.NoError(t, picker.UpdateTarget(160))
	assert.Len(t, picker.GetDomainEvents(), 1)

	assert.ErrorIs(t, picker.UpdateTarget(-10), ErrInvalidTarget)
}

func TestChangeStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      PickerStatus
		expectError bool
		expectEvent bool
	}{
		{"to break", PickerStatusBreak, false, true},
		{"to offline", PickerStatusOffline, false, true},
		{"same status", PickerStatusActive, false, false},
		{"unknown", PickerStatus("lunch"), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			picker, err := NewPicker("P-001", "John Smith", 100)
			require.NoError(t, err)
			picker.ClearDomainEvents()

			err = picker.ChangeStatus(tt.status)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidStatus)
				assert.Equal(t, PickerStatusActive, picker.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, picker.Status)
			if tt.expectEvent {
				require.Len(t, picker.GetDomainEvents(), 1)
				event, ok := picker.GetDomainEvents()[0].(*PickerStatusChangedEvent)
				require.True(t, ok)
				assert.Equal(t, "active", event.PreviousStatus)
			} else {
				assert.Empty(t, picker.GetDomainEvents())
			}
		})
	}
}

func TestParsePickerStatus(t *testing.T) {
	s, err := ParsePickerStatus(" Break ")
	require.NoError(t, err)
	assert.Equal(t, PickerStatusBreak, s)

	_, err = ParsePickerStatus("gone")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestAddBreak(t *testing.T) {
	picker, err := NewPicker("P-001", "John Smith", 100)
	require.NoError(t, err)

	require.NoError(t, picker.AddBreak("10:30", "10:45", BreakTypeShort))
	assert.Len(t, picker.Breaks, 3)

	assert.ErrorIs(t, picker.AddBreak("11:00", "10:00", BreakTypeShort), ErrInvalidBreak)
	assert.ErrorIs(t, picker.AddBreak("25:00", "26:00", BreakTypeShort), ErrInvalidBreak)
	assert.ErrorIs(t, picker.AddBreak("10:00", "10:15", BreakType("nap")), ErrInvalidBreak)
	assert.Len(t, picker.Breaks, 3)
}

func TestRename(t *testing.T) {
	picker, err := NewPicker("P-001", "John Smith", 100)
	require.NoError(t, err)

	require.NoError(t, picker.Rename("  Johnny Smith "))
	assert.Equal(t, "Johnny Smith", picker.Name)
	assert.ErrorIs(t, picker.Rename(" "), ErrNameRequired)
}

func TestNewDashboardSnapshot(t *testing.T) {
	evaluated := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)

	_, err := NewDashboardSnapshot("  ", "admin", evaluated, 3, nil)
	assert.ErrorIs(t, err, ErrSnapshotNameRequired)

	snap, err := NewDashboardSnapshot(" end of week ", "admin", evaluated, 3, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "end of week", snap.Name)
	assert.NotZero(t, snap.SavedAt)
}
