package analytics

import (
	"time"

	"github.com/wms-platform/picker-performance-service/internal/domain"
)

// Dashboard bundles every view of the shift computed from one picker snapshot at one instant.
type Dashboard struct {
	EvaluatedAt      time.Time           `json:"evaluatedAt"`
	CurrentHour      int                 `json:"currentHour"`
	PickerCount      int                 `json:"pickerCount"`
	ActivePickers    int                 `json:"activePickers"`
	Metrics          *PerformanceMetrics `json:"metrics"`
	ShiftProgress    ShiftProgress       `json:"shiftProgress"`
	Team             *TeamProjection     `json:"team"`
	Projections      []PickerProjection  `json:"projections"`
	GapAnalysis      []PickerProjection  `json:"gapAnalysis"`
	Consistency      *ConsistencyReport  `json:"consistency"`
	CumulativeSeries []CumulativePoint   `json:"cumulativeSeries"`
	LaborEfficiency  EfficiencyRatio     `json:"laborEfficiency"`
	HourAnalysis     *HourAnalysis       `json:"hourAnalysis"`
	Alerts           []Alert             `json:"alerts"`
	Leaderboard      []LeaderboardEntry  `json:"leaderboard"`
}

// BuildDashboard computes all views, or none: the first failing stage aborts the call.
// Hour-scoped views use the current hour clamped into the shift buckets.
func BuildDashboard(pickers []*domain.Picker, now time.Time, sched Schedule) (*Dashboard, error) {
	if err := validate(pickers); err != nil {
		return nil, err
	}

	hour := sched.ShiftHour(now)
	d := &Dashboard{
		EvaluatedAt:   now,
		CurrentHour:   hour,
		PickerCount:   len(pickers),
		ActivePickers: len(activePickers(pickers)),
		ShiftProgress: sched.Progress(now),
	}

	var err error
	if d.Metrics, err = ComputeMetrics(pickers); err != nil {
		return nil, err
	}
	if d.Projections, err = ProjectPickers(pickers, now, sched); err != nil {
		return nil, err
	}
	if d.Team, err = ProjectTeam(pickers, now, sched); err != nil {
		return nil, err
	}
	d.GapAnalysis = GapAnalysis(d.Projections)
	if d.Consistency, err = AnalyzeConsistency(pickers, hour); err != nil {
		return nil, err
	}
	if d.CumulativeSeries, err = BuildCumulativeSeries(pickers, ""); err != nil {
		return nil, err
	}
	d.LaborEfficiency = LaborEfficiencyRatio(d.CumulativeSeries)
	if d.HourAnalysis, err = AnalyzeHour(pickers, hour); err != nil {
		return nil, err
	}
	if d.Alerts, err = Alerts(pickers, d.Metrics, d.Team, now, sched); err != nil {
		return nil, err
	}
	if d.Leaderboard, err = Leaderboard(pickers); err != nil {
		return nil, err
	}

	return d, nil
}
