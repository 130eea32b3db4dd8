package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/picker-performance-service/internal/domain"
)

func TestTeamConsistency(t *testing.T) {
	tests := []struct {
		name     string
		pickers  func(t *testing.T) []*domain.Picker
		hour     int
		expected int
	}{
		{
			name: "identical completion gives full consistency",
			pickers: func(t *testing.T) []*domain.Picker {
				return []*domain.Picker{
					newPicker(t, "P-1", "A", 100, 0, 13),
					newPicker(t, "P-2", "B", 100, 0, 13),
				}
			},
			hour:     10,
			expected: 100,
		},
		{
			name: "no data in hour returns default",
			pickers: func(t *testing.T) []*domain.Picker {
				return []*domain.Picker{newPicker(t, "P-1", "A", 100, 10)}
			},
			hour:     12,
			expected: DefaultConsistency,
		},
		{
			name: "only inactive pickers have data",
			pickers: func(t *testing.T) []*domain.Picker {
				return []*domain.Picker{
					withStatus(t, newPicker(t, "P-1", "A", 80, 10), domain.PickerStatusBreak),
					newPicker(t, "P-2", "B", 80),
				}
			},
			hour:     9,
			expected: DefaultConsistency,
		},
		{
			name: "spread of 50 points",
			pickers: func(t *testing.T) []*domain.Picker {
				// hourly target 10: completions 100 and 50, stddev 25
				return []*domain.Picker{
					newPicker(t, "P-1", "A", 80, 10),
					newPicker(t, "P-2", "B", 80, 5),
				}
			},
			hour:     9,
			expected: 50,
		},
		{
			name: "dispersion beyond the scale clamps to zero",
			pickers: func(t *testing.T) []*domain.Picker {
				return []*domain.Picker{
					newPicker(t, "P-1", "A", 80, 20),
					newPicker(t, "P-2", "B", 80, 0),
				}
			},
			hour:     9,
			expected: 0,
		},
		{
			name:     "empty input",
			pickers:  func(t *testing.T) []*domain.Picker { return nil },
			hour:     9,
			expected: DefaultConsistency,
		},
		{
			name: "hour outside the shift has no data",
			pickers: func(t *testing.T) []*domain.Picker {
				return []*domain.Picker{newPicker(t, "P-1", "A", 80, 20)}
			},
			hour:     20,
			expected: DefaultConsistency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := TeamConsistency(tt.pickers(t), tt.hour)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, score)
		})
	}
}

func TestAnalyzeConsistency_Breakdown(t *testing.T) {
	pickers := []*domain.Picker{
		newPicker(t, "P-1", "A", 80, 10),
		newPicker(t, "P-2", "B", 80, 5),
		withStatus(t, newPicker(t, "P-3", "C", 80, 30), domain.PickerStatusOffline),
	}

	report, err := AnalyzeConsistency(pickers, 9)
	require.NoError(t, err)
	assert.Equal(t, 2, report.PickerCount)
	assert.InDelta(t, 75.0, report.MeanCompletion, 1e-9)
	assert.InDelta(t, 25.0, report.StdDev, 1e-9)
	assert.False(t, report.Defaulted)

	_, err = AnalyzeConsistency([]*domain.Picker{nil}, 9)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildCumulativeSeries_Team(t *testing.T) {
	pickers := []*domain.Picker{
		newPicker(t, "A", "A", 80, 10, 20),
		newPicker(t, "B", "B", 80, 5),
		withStatus(t, newPicker(t, "C", "C", 800, 1), domain.PickerStatusOffline),
	}

	series, err := BuildCumulativeSeries(pickers, "")
	require.NoError(t, err)
	require.Len(t, series, domain.HourCount)

	// offline lines still count as output, offline targets do not
	assert.Equal(t, CumulativePoint{Hour: 9, Actual: 16, Target: 20}, series[0])
	assert.Equal(t, CumulativePoint{Hour: 10, Actual: 36, Target: 40}, series[1])
	assert.Equal(t, CumulativePoint{Hour: 17, Actual: 36, Target: 180}, series[8])
}

func TestBuildCumulativeSeries_SinglePicker(t *testing.T) {
	pickers := []*domain.Picker{
		newPicker(t, "A", "A", 100, 10, 20),
		newPicker(t, "B", "B", 80, 5),
	}

	series, err := BuildCumulativeSeries(pickers, "A")
	require.NoError(t, err)
	// 12.5 per hour
	assert.Equal(t, CumulativePoint{Hour: 9, Actual: 10, Target: 13}, series[0])
	assert.Equal(t, CumulativePoint{Hour: 10, Actual: 30, Target: 25}, series[1])
	assert.Equal(t, CumulativePoint{Hour: 17, Actual: 30, Target: 113}, series[8])

	_, err = BuildCumulativeSeries(pickers, "missing")
	assert.ErrorIs(t, err, ErrPickerNotFound)
}

func TestLaborEfficiencyRatio(t *testing.T) {
	series := []CumulativePoint{
		{Hour: 9, Actual: 10, Target: 10},
		{Hour: 10, Actual: 20, Target: 20},
		{Hour: 11, Actual: 30, Target: 30},
	}

	r := LaborEfficiencyRatio(series)
	assert.Equal(t, 40, r.Area)
	assert.Equal(t, 40, r.TargetArea)
	assert.Equal(t, 100, r.Ratio)
	assert.Equal(t, BandExcellent, r.Band)
	assert.NotEmpty(t, r.Interpretation)
	assert.Equal(t, 30, r.FinalTotal)
	assert.Equal(t, 4, r.SimpleAverage)
	assert.Equal(t, "9:00 - 10:00", r.SteepestHour)
	assert.Equal(t, 10, r.MaxSlope)
	assert.Equal(t, "10:00 - 11:00", r.FlattestHour)
	assert.Equal(t, 10, r.MinSlope)
}

func TestLaborEfficiencyRatio_FromSeries(t *testing.T) {
	pickers := []*domain.Picker{newPicker(t, "A", "A", 80, 5, 5, 5, 5)}

	series, err := BuildCumulativeSeries(pickers, "")
	require.NoError(t, err)

	r := LaborEfficiencyRatio(series)
	// actual 5,10,15,20,20,20,20,20,20 against target 10..90
	assert.Equal(t, 138, r.Area)
	assert.Equal(t, 400, r.TargetArea)
	assert.Equal(t, 34, r.Ratio)
	assert.Equal(t, BandLow, r.Band)
	assert.Equal(t, "9:00 - 10:00", r.SteepestHour)
	assert.Equal(t, "12:00 - 13:00", r.FlattestHour)
	assert.Equal(t, 0, r.MinSlope)
	assert.Equal(t, 3, r.SimpleAverage)
}

func TestLaborEfficiencyRatio_Degenerate(t *testing.T) {
	r := LaborEfficiencyRatio([]CumulativePoint{{Hour: 9, Actual: 4, Target: 4}})
	assert.Equal(t, BandInsufficientData, r.Band)
	assert.Zero(t, r.Ratio)

	r = LaborEfficiencyRatio(nil)
	assert.Equal(t, BandInsufficientData, r.Band)

	r = LaborEfficiencyRatio([]CumulativePoint{{Hour: 9}, {Hour: 10}})
	assert.Zero(t, r.Ratio)
	assert.Equal(t, BandLow, r.Band)
	assert.Empty(t, r.SteepestHour)
	assert.Empty(t, r.FlattestHour)
	assert.Zero(t, r.MinSlope)
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		ratio int
		band  string
	}{
		{120, BandExcellent},
		{90, BandExcellent},
		{89, BandGood},
		{70, BandGood},
		{69, BandModerate},
		{50, BandModerate},
		{49, BandLow},
		{0, BandLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.band, bandFor(tt.ratio), "ratio=%d", tt.ratio)
	}
}
