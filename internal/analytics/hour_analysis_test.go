package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/picker-performance-service/internal/domain"
)

func TestAnalyzeHour(t *testing.T) {
	pickers := []*domain.Picker{
		newPicker(t, "A", "A", 80, 10, 10),
		newPicker(t, "B", "B", 80, 5, 4),
		withStatus(t, newPicker(t, "C", "C", 80, 30, 30), domain.PickerStatusOffline),
	}

	a, err := AnalyzeHour(pickers, 10)
	require.NoError(t, err)

	assert.Equal(t, 10, a.Hour)
	assert.Equal(t, 2, a.PickerCount)
	assert.Equal(t, 14, a.Lines)
	assert.Equal(t, 20, a.Target)
	assert.Equal(t, 70, a.CompletionRate)
	assert.Equal(t, RatingAcceptable, a.Rating)
	assert.Equal(t, 40, a.ConsistencyScore)
	assert.Equal(t, 29, a.CumulativeLines)
	assert.Equal(t, 40, a.CumulativeTarget)
	assert.Equal(t, 160, a.DailyTarget)
	assert.Equal(t, 131, a.Deficit)
	assert.Equal(t, 7, a.RemainingHours)
	assert.InDelta(t, 131.0/7.0, a.RequiredRate, 1e-9)
	assert.InDelta(t, (131.0/7.0)/20*100-100, a.AccelerationNeeded, 1e-9)
}

func TestAnalyzeHour_CompletionCappedAndLastHour(t *testing.T) {
	pickers := []*domain.Picker{newPicker(t, "A", "A", 80, 10, 10, 10, 10, 10, 10, 10, 10, 30)}

	a, err := AnalyzeHour(pickers, 17)
	require.NoError(t, err)
	assert.Equal(t, 100, a.CompletionRate)
	assert.Equal(t, RatingExcellent, a.Rating)
	assert.Zero(t, a.Deficit)
	assert.Zero(t, a.RemainingHours)
	assert.Zero(t, a.RequiredRate)
	assert.Zero(t, a.AccelerationNeeded)
}

func TestAnalyzeHour_NoActivePickers(t *testing.T) {
	pickers := []*domain.Picker{withStatus(t, newPicker(t, "A", "A", 80, 10), domain.PickerStatusBreak)}

	a, err := AnalyzeHour(pickers, 9)
	require.NoError(t, err)
	assert.Zero(t, a.Target)
	assert.Zero(t, a.CompletionRate)
	assert.Equal(t, RatingCritical, a.Rating)
	assert.Equal(t, DefaultConsistency, a.ConsistencyScore)
}

func TestAnalyzeHour_InvalidHour(t *testing.T) {
	a, err := AnalyzeHour(nil, 8)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrInvalidHour)
	assert.Nil(t, a)
}

func TestRatingFor(t *testing.T) {
	tests := []struct {
		rate   int
		rating string
	}{
		{100, RatingExcellent},
		{99, RatingGood},
		{85, RatingGood},
		{84, RatingAcceptable},
		{70, RatingAcceptable},
		{69, RatingNeedsImprovement},
		{50, RatingNeedsImprovement},
		{49, RatingCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.rating, ratingFor(tt.rate), "rate=%d", tt.rate)
	}
}
