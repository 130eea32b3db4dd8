package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/picker-performance-service/internal/domain"
)

func TestBuildDashboard(t *testing.T) {
	pickers := []*domain.Picker{
		newPicker(t, "P-1", "John Smith", 100, 12, 13, 11, 0, 12),
		newPicker(t, "P-2", "Sarah Johnson", 120, 15, 16, 14, 0, 15),
		withStatus(t, newPicker(t, "P-3", "Mike Wilson", 110, 14, 12), domain.PickerStatusOffline),
	}

	d, err := BuildDashboard(pickers, at(14, 0), utcSchedule())
	require.NoError(t, err)

	assert.Equal(t, 14, d.CurrentHour)
	assert.Equal(t, 3, d.PickerCount)
	assert.Equal(t, 2, d.ActivePickers)
	assert.Equal(t, 134, d.Metrics.TotalLines)
	assert.Len(t, d.Projections, 3)
	assert.Len(t, d.GapAnalysis, 3)
	assert.Len(t, d.CumulativeSeries, domain.HourCount)
	assert.Equal(t, 14, d.HourAnalysis.Hour)
	assert.Equal(t, 14, d.Consistency.Hour)
	assert.Len(t, d.Leaderboard, 3)
	assert.NotNil(t, d.Alerts)
	assert.InDelta(t, 62.5, d.ShiftProgress.PercentageComplete, 1e-9)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"nextBreak":{"type":"short","startsIn":60}`)
}

func TestBuildDashboard_OutsideShift(t *testing.T) {
	d, err := BuildDashboard(nil, at(6, 0), utcSchedule())
	require.NoError(t, err)
	assert.Equal(t, 9, d.CurrentHour)
	assert.Equal(t, DefaultConsistency, d.Consistency.Score)
	assert.Empty(t, d.Leaderboard)
}

func TestBuildDashboard_AllOrNothing(t *testing.T) {
	pickers := []*domain.Picker{newPicker(t, "P-1", "John Smith", 100, 10), nil}

	d, err := BuildDashboard(pickers, at(12, 0), utcSchedule())
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Nil(t, d)
}
