package analytics

import (
	"fmt"

	"github.com/wms-platform/picker-performance-service/internal/domain"
)

// Hour ratings by completion rate
const (
	RatingExcellent        = "Excellent"
	RatingGood             = "Good"
	RatingAcceptable       = "Acceptable"
	RatingNeedsImprovement = "Needs Improvement"
	RatingCritical         = "Critical"
)

// HourAnalysis is the team's standing in one shift hour, restricted to active pickers.
type HourAnalysis struct {
	Hour             int     `json:"hour"`
	Lines            int     `json:"lines"`
	Target           int     `json:"target"`
	PickerCount      int     `json:"pickerCount"`
	CompletionRate   int     `json:"completionRate"`
	ConsistencyScore int     `json:"consistencyScore"`
	Rating           string  `json:"rating"`
	CumulativeLines  int     `json:"cumulativeLines"`
	CumulativeTarget int     `json:"cumulativeTarget"`
	DailyTarget      int     `json:"dailyTarget"`
	Deficit          int     `json:"deficit"`
	RemainingHours   int     `json:"remainingHours"`
	RequiredRate     float64 `json:"requiredRate"`
	// AccelerationNeeded is the percent increase over the hourly team target
	// needed to close the deficit in the remaining hours.
	AccelerationNeeded float64 `json:"accelerationNeeded"`
}

func ratingFor(rate int) string {
	switch {
	case rate >= 100:
		return RatingExcellent
	case rate >= 85:
		return RatingGood
	case rate >= 70:
		return RatingAcceptable
	case rate >= 50:
		return RatingNeedsImprovement
	default:
		return RatingCritical
	}
}

// AnalyzeHour reports lines against target for one hour plus what the rest of
// the shift must deliver to reach the daily target.
func AnalyzeHour(pickers []*domain.Picker, hour int) (*HourAnalysis, error) {
	if err := validate(pickers); err != nil {
		return nil, err
	}
	if !domain.ValidHour(hour) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrInvalidHour)
	}

	active := activePickers(pickers)
	a := &HourAnalysis{Hour: hour, PickerCount: len(active)}

	for _, p := range active {
		a.Target += domain.HourlyTarget(p.Target)
		a.DailyTarget += p.Target
		a.Lines += p.LinesAt(hour)
		for h := domain.FirstHour; h <= hour; h++ {
			a.CumulativeLines += p.LinesAt(h)
		}
	}
	a.CumulativeTarget = a.Target * (hour - domain.FirstHour + 1)

	if a.Target > 0 {
		a.CompletionRate = min(100, roundInt(percent(a.Lines, a.Target)))
	}
	a.Rating = ratingFor(a.CompletionRate)

	consistency, err := TeamConsistency(pickers, hour)
	if err != nil {
		return nil, err
	}
	a.ConsistencyScore = consistency

	a.Deficit = max(0, a.DailyTarget-a.CumulativeLines)
	a.RemainingHours = max(0, domain.LastHour-hour)
	if a.RemainingHours > 0 && a.Deficit > 0 {
		a.RequiredRate = float64(a.Deficit) / float64(a.RemainingHours)
		if a.Target > 0 {
			a.AccelerationNeeded = a.RequiredRate/float64(a.Target)*100 - 100
		}
	}

	return a, nil
}
