package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/picker-performance-service/internal/domain"
)

func TestProjectTeam_ScenarioB_ShiftOver(t *testing.T) {
	pickers := []*domain.Picker{newPicker(t, "P-1", "John Smith", 100, 10, 10, 10, 10, 10, 10, 10, 10, 10)}

	team, err := ProjectTeam(pickers, at(17, 0), utcSchedule())
	require.NoError(t, err)

	assert.True(t, team.Final)
	assert.Equal(t, 90, team.ProjectedTotal)
	assert.Equal(t, 90, team.CurrentLines)
	assert.Equal(t, 100, team.TotalTarget)
	assert.Equal(t, 10, team.Shortfall)
	assert.Equal(t, 90.0, team.CompletionPercentage)
	assert.False(t, team.OnTrack)
	assert.Zero(t, team.RemainingHours)
}

func TestProjectPickers_MidShift(t *testing.T) {
	pickers := []*domain.Picker{
		newPicker(t, "P-1", "Behind", 100, 10, 10, 10, 10),
		newPicker(t, "P-2", "Ahead", 100, 15, 15, 15, 15),
	}

	projections, err := ProjectPickers(pickers, at(13, 0), utcSchedule())
	require.NoError(t, err)
	require.Len(t, projections, 2)

	behind := projections[0]
	assert.Equal(t, 40, behind.CurrentLines)
	assert.Equal(t, 10.0, behind.CurrentRate)
	assert.Equal(t, 80, behind.ProjectedTotal)
	assert.Equal(t, 20, behind.Shortfall)
	assert.Equal(t, 80, behind.ProjectedAchievement)
	assert.Equal(t, 80, behind.AchievementPercent)

	ahead := projections[1]
	assert.Equal(t, 120, ahead.ProjectedTotal)
	assert.Equal(t, 0, ahead.Shortfall)
	assert.Equal(t, 100, ahead.ProjectedAchievement)
	assert.Equal(t, 120, ahead.AchievementPercent)

	team, err := ProjectTeam(pickers, at(13, 0), utcSchedule())
	require.NoError(t, err)
	assert.False(t, team.Final)
	assert.Equal(t, 200, team.ProjectedTotal)
	assert.Equal(t, 200, team.TotalTarget)
	assert.True(t, team.OnTrack)
	assert.Equal(t, 100.0, team.CompletionPercentage)
	assert.Equal(t, 4, team.RemainingHours)
}

func TestProjectPickers_EarlyShiftUsesMinimumElapsed(t *testing.T) {
	pickers := []*domain.Picker{newPicker(t, "P-1", "Early", 100, 2)}

	projections, err := ProjectPickers(pickers, at(9, 10), utcSchedule())
	require.NoError(t, err)
	assert.Equal(t, 160, projections[0].ProjectedTotal)
}

func TestProjectPickers_ZeroTarget(t *testing.T) {
	pickers := []*domain.Picker{newPicker(t, "P-1", "Trainee", 0, 8, 8)}

	projections, err := ProjectPickers(pickers, at(11, 0), utcSchedule())
	require.NoError(t, err)
	assert.Equal(t, 64, projections[0].ProjectedTotal)
	assert.Zero(t, projections[0].AchievementPercent)
	assert.Zero(t, projections[0].ProjectedAchievement)
	assert.Zero(t, projections[0].Shortfall)

	team, err := ProjectTeam(pickers, at(11, 0), utcSchedule())
	require.NoError(t, err)
	assert.Zero(t, team.CompletionPercentage)
	assert.True(t, team.OnTrack)
}

func TestProjectTeam_Empty(t *testing.T) {
	team, err := ProjectTeam(nil, at(10, 0), utcSchedule())
	require.NoError(t, err)
	assert.Zero(t, team.ProjectedTotal)
	assert.Zero(t, team.CompletionPercentage)
}

func TestProjectTeam_NilPicker(t *testing.T) {
	team, err := ProjectTeam([]*domain.Picker{nil}, at(10, 0), utcSchedule())
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Nil(t, team)
}

func TestGapAnalysis(t *testing.T) {
	in := []PickerProjection{
		{PickerID: "A", AchievementPercent: 90},
		{PickerID: "B", AchievementPercent: 60},
		{PickerID: "C", AchievementPercent: 90},
		{PickerID: "D", AchievementPercent: 110},
	}

	out := GapAnalysis(in)

	ids := make([]string, 0, len(out))
	for _, p := range out {
		ids = append(ids, p.PickerID)
	}
	assert.Equal(t, []string{"B", "A", "C", "D"}, ids)
	assert.Equal(t, "A", in[0].PickerID, "input must not be reordered")

	assert.NotNil(t, GapAnalysis(nil))
}
