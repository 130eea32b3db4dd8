package analytics

import (
	"slices"
	"time"

	"github.com/wms-platform/picker-performance-service/internal/domain"
)

// PickerProjection extrapolates one picker's end-of-shift total from the current rate
type PickerProjection struct {
	PickerID             string  `json:"pickerId"`
	Name                 string  `json:"name"`
	CurrentLines         int     `json:"currentLines"`
	CurrentRate          float64 `json:"currentRate"`
	ProjectedTotal       int     `json:"projectedTotal"`
	Target               int     `json:"target"`
	Shortfall            int     `json:"shortfall"`
	ProjectedAchievement int     `json:"projectedAchievement"`
	AchievementPercent   int     `json:"achievementPercent"`
}

// TeamProjection is the team-level end-of-shift outlook. Final is set once the
// shift is over, in which case totals are actuals rather than projections.
type TeamProjection struct {
	CurrentLines         int     `json:"currentLines"`
	ProjectedTotal       int     `json:"projectedTotal"`
	TotalTarget          int     `json:"totalTarget"`
	Shortfall            int     `json:"shortfall"`
	CompletionPercentage float64 `json:"completionPercentage"`
	OnTrack              bool    `json:"onTrack"`
	Final                bool    `json:"final"`
	RemainingHours       int     `json:"remainingHours"`
}

func projectPicker(p *domain.Picker, elapsed, shiftHours float64) PickerProjection {
	perHour := safeDiv(float64(p.Performance), elapsed)
	projected := floorInt(perHour * shiftHours)
	shortfall := 0
	if p.Target > projected {
		shortfall = p.Target - projected
	}
	achievement := projected
	if p.Target < achievement {
		achievement = p.Target
	}
	return PickerProjection{
		PickerID:             p.PickerID,
		Name:                 p.Name,
		CurrentLines:         p.Performance,
		CurrentRate:          perHour,
		ProjectedTotal:       projected,
		Target:               p.Target,
		Shortfall:            shortfall,
		ProjectedAchievement: achievement,
		AchievementPercent:   roundInt(percent(projected, p.Target)),
	}
}

// ProjectPickers projects every picker, in input order
func ProjectPickers(pickers []*domain.Picker, now time.Time, sched Schedule) ([]PickerProjection, error) {
	if err := validate(pickers); err != nil {
		return nil, err
	}

	elapsed := sched.ElapsedHours(now)
	shiftHours := float64(sched.EndHour - sched.StartHour)

	out := make([]PickerProjection, 0, len(pickers))
	for _, p := range pickers {
		out = append(out, projectPicker(p, elapsed, shiftHours))
	}
	return out, nil
}

// ProjectTeam sums the per-picker projections. Once no hours remain it reports
// the actual totals and marks the result final.
func ProjectTeam(pickers []*domain.Picker, now time.Time, sched Schedule) (*TeamProjection, error) {
	projections, err := ProjectPickers(pickers, now, sched)
	if err != nil {
		return nil, err
	}

	team := &TeamProjection{RemainingHours: sched.RemainingHours(now)}
	for _, p := range projections {
		team.CurrentLines += p.CurrentLines
		team.TotalTarget += p.Target
		team.ProjectedTotal += p.ProjectedTotal
	}

	if team.RemainingHours <= 0 {
		team.Final = true
		team.ProjectedTotal = team.CurrentLines
	}

	if team.TotalTarget > team.ProjectedTotal {
		team.Shortfall = team.TotalTarget - team.ProjectedTotal
	}
	team.CompletionPercentage = percent(team.ProjectedTotal, team.TotalTarget)
	team.OnTrack = team.ProjectedTotal >= team.TotalTarget
	return team, nil
}

// GapAnalysis orders projections by achievement percent, lowest first. Ties keep input order.
func GapAnalysis(projections []PickerProjection) []PickerProjection {
	out := slices.Clone(projections)
	if out == nil {
		out = []PickerProjection{}
	}
	slices.SortStableFunc(out, func(a, b PickerProjection) int {
		return a.AchievementPercent - b.AchievementPercent
	})
	return out
}
