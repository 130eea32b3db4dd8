package analytics

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/wms-platform/picker-performance-service/internal/domain"
)

const (
	// DefaultConsistency is reported when no active picker has lines in the hour.
	DefaultConsistency = 80
	maxStdDev          = 50.0
)

// ConsistencyReport breaks the consistency score down into its inputs
type ConsistencyReport struct {
	Hour           int     `json:"hour"`
	Score          int     `json:"score"`
	MeanCompletion float64 `json:"meanCompletion"`
	StdDev         float64 `json:"stdDev"`
	PickerCount    int     `json:"pickerCount"`
	Defaulted      bool    `json:"defaulted"`
}

// AnalyzeConsistency measures how evenly active pickers hit their hourly target.
// Each picker contributes lines/round(target/8)*100; the population standard
// deviation of those percentages is mapped inversely onto 0..100.
func AnalyzeConsistency(pickers []*domain.Picker, hour int) (*ConsistencyReport, error) {
	if err := validate(pickers); err != nil {
		return nil, err
	}

	active := activePickers(pickers)
	report := &ConsistencyReport{Hour: hour, PickerCount: len(active)}

	hasData := false
	completions := make(stats.Float64Data, 0, len(active))
	for _, p := range active {
		lines := p.LinesAt(hour)
		if lines > 0 {
			hasData = true
		}
		completions = append(completions, percent(lines, domain.HourlyTarget(p.Target)))
	}

	if !hasData {
		report.Score = DefaultConsistency
		report.Defaulted = true
		return report, nil
	}

	mean, err := stats.Mean(completions)
	if err != nil {
		return nil, fmt.Errorf("consistency mean: %w", err)
	}
	sd, err := stats.StandardDeviationPopulation(completions)
	if err != nil {
		return nil, fmt.Errorf("consistency deviation: %w", err)
	}

	report.MeanCompletion = mean
	report.StdDev = sd
	report.Score = roundInt(clamp(100-(sd/maxStdDev)*100, 0, 100))
	return report, nil
}

// TeamConsistency returns the 0..100 consistency score for hour
func TeamConsistency(pickers []*domain.Picker, hour int) (int, error) {
	report, err := AnalyzeConsistency(pickers, hour)
	if err != nil {
		return 0, err
	}
	return report.Score, nil
}

// CumulativePoint is one hour on the cumulative output curve
type CumulativePoint struct {
	Hour   int `json:"hour"`
	Actual int `json:"actual"`
	Target int `json:"target"`
}

// BuildCumulativeSeries returns the running actual and target totals for hours
// 9..17. An empty pickerID builds the team curve, where actual lines come from
// every picker and the hourly target is the sum of target/8 over active pickers.
func BuildCumulativeSeries(pickers []*domain.Picker, pickerID string) ([]CumulativePoint, error) {
	if err := validate(pickers); err != nil {
		return nil, err
	}

	contributors := pickers
	var hourlyTarget float64
	if pickerID != "" {
		p := findPicker(pickers, pickerID)
		if p == nil {
			return nil, fmt.Errorf("%w: %s", ErrPickerNotFound, pickerID)
		}
		contributors = []*domain.Picker{p}
		hourlyTarget = float64(p.Target) / domain.ShiftHours
	} else {
		for _, p := range activePickers(pickers) {
			hourlyTarget += float64(p.Target) / domain.ShiftHours
		}
	}

	series := make([]CumulativePoint, 0, domain.HourCount)
	actual, target := 0, 0.0
	for hour := domain.FirstHour; hour <= domain.LastHour; hour++ {
		for _, p := range contributors {
			actual += p.LinesAt(hour)
		}
		target += hourlyTarget
		series = append(series, CumulativePoint{Hour: hour, Actual: actual, Target: roundInt(target)})
	}
	return series, nil
}

// Efficiency bands for the labor efficiency ratio
const (
	BandExcellent        = "excellent"
	BandGood             = "good"
	BandModerate         = "moderate"
	BandLow              = "low"
	BandInsufficientData = "insufficient_data"
)

var bandInterpretation = map[string]string{
	BandExcellent:        "Excellent efficiency with output closely matching or exceeding targets.",
	BandGood:             "Good efficiency with output meeting most targets.",
	BandModerate:         "Moderate efficiency with output meeting about half of targets.",
	BandLow:              "Low efficiency signals systemic issues in the picking process.",
	BandInsufficientData: "Not enough hourly data to compare output against targets.",
}

// EfficiencyRatio compares the area under the actual cumulative curve with the target curve
type EfficiencyRatio struct {
	Area           int    `json:"area"`
	TargetArea     int    `json:"targetArea"`
	Ratio          int    `json:"ratio"`
	Band           string `json:"band"`
	Interpretation string `json:"interpretation"`
	FinalTotal     int    `json:"finalTotal"`
	SimpleAverage  int    `json:"simpleAverage"`
	SteepestHour   string `json:"steepestHour,omitempty"`
	MaxSlope       int    `json:"maxSlope"`
	FlattestHour   string `json:"flattestHour,omitempty"`
	MinSlope       int    `json:"minSlope"`
}

func bandFor(ratio int) string {
	switch {
	case ratio >= 90:
		return BandExcellent
	case ratio >= 70:
		return BandGood
	case ratio >= 50:
		return BandModerate
	default:
		return BandLow
	}
}

func hourSpan(from, to int) string {
	return fmt.Sprintf("%d:00 - %d:00", from, to)
}

// LaborEfficiencyRatio integrates both curves with the trapezoidal rule over
// unit-width hours. The opening segment never counts as the flattest hour.
func LaborEfficiencyRatio(series []CumulativePoint) EfficiencyRatio {
	if len(series) < 2 {
		return EfficiencyRatio{Band: BandInsufficientData, Interpretation: bandInterpretation[BandInsufficientData]}
	}

	var area, targetArea float64
	maxSlope, minSlope := 0, math.MaxInt
	var steepest, flattest string

	for i := 0; i < len(series)-1; i++ {
		cur, next := series[i], series[i+1]
		area += float64(cur.Actual+next.Actual) / 2
		targetArea += float64(cur.Target+next.Target) / 2

		slope := next.Actual - cur.Actual
		if slope > maxSlope {
			maxSlope = slope
			steepest = hourSpan(cur.Hour, next.Hour)
		}
		if i > 0 && slope < minSlope {
			minSlope = slope
			flattest = hourSpan(cur.Hour, next.Hour)
		}
	}
	if flattest == "" {
		minSlope = 0
	}

	final := series[len(series)-1].Actual
	ratio := roundInt(safeDiv(area, targetArea) * 100)
	band := bandFor(ratio)

	return EfficiencyRatio{
		Area:           roundInt(area),
		TargetArea:     roundInt(targetArea),
		Ratio:          ratio,
		Band:           band,
		Interpretation: bandInterpretation[band],
		FinalTotal:     final,
		SimpleAverage:  roundInt(float64(final) / domain.ShiftHours),
		SteepestHour:   steepest,
		MaxSlope:       maxSlope,
		FlattestHour:   flattest,
		MinSlope:       minSlope,
	}
}
