package analytics

import (
	"fmt"
	"time"

	"github.com/wms-platform/picker-performance-service/internal/domain"
)

// Alert identifiers
const (
	AlertLowEfficiency   = "low_efficiency"
	AlertStalledPicker   = "stalled_picker"
	AlertOffTrack        = "off_track"
	AlertMorningSlowdown = "morning_slowdown"
)

// Alert severities
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

const (
	lowEfficiencyThreshold = 75.0
	stalledLinesThreshold  = 10
	morningSlowdownRatio   = 0.5
	morningLastHour        = 11
)

// Alert is a condition a shift manager should look at
type Alert struct {
	ID        string   `json:"id"`
	Severity  string   `json:"severity"`
	Title     string   `json:"title"`
	Message   string   `json:"message"`
	PickerIDs []string `json:"pickerIds,omitempty"`
}

// Alerts evaluates the alert rules against an already computed metrics and team projection.
func Alerts(pickers []*domain.Picker, metrics *PerformanceMetrics, team *TeamProjection, now time.Time, sched Schedule) ([]Alert, error) {
	if err := validate(pickers); err != nil {
		return nil, err
	}
	if metrics == nil || team == nil {
		return nil, fmt.Errorf("%w: metrics and team projection are required", ErrInvalidInput)
	}

	alerts := make([]Alert, 0)
	hour := sched.Hour(now)
	inShift := hour >= sched.StartHour && hour < sched.EndHour

	if metrics.TotalLines > 0 && metrics.EfficiencyScore < lowEfficiencyThreshold {
		alerts = append(alerts, Alert{
			ID:       AlertLowEfficiency,
			Severity: SeverityWarning,
			Title:    "Low Efficiency",
			Message:  fmt.Sprintf("Team efficiency is %.1f%%, below %.0f%%", metrics.EfficiencyScore, lowEfficiencyThreshold),
		})
	}

	if inShift {
		var stalled []string
		for _, p := range activePickers(pickers) {
			if p.LinesAt(hour) < stalledLinesThreshold {
				stalled = append(stalled, p.PickerID)
			}
		}
		if len(stalled) > 0 {
			alerts = append(alerts, Alert{
				ID:        AlertStalledPicker,
				Severity:  SeverityWarning,
				Title:     "Stalled Pickers",
				Message:   fmt.Sprintf("%d pickers have fewer than %d lines in the current hour", len(stalled), stalledLinesThreshold),
				PickerIDs: stalled,
			})
		}

		if !team.OnTrack && !team.Final {
			alerts = append(alerts, Alert{
				ID:       AlertOffTrack,
				Severity: SeverityCritical,
				Title:    "Off Track for Daily Target",
				Message:  fmt.Sprintf("Projected to complete %.1f%% of daily target", team.CompletionPercentage),
			})
		}
	}

	if hour >= sched.StartHour && hour < sched.LunchHour {
		if ratio, ok := morningCompletion(pickers, min(hour, morningLastHour)); ok && ratio < morningSlowdownRatio {
			alerts = append(alerts, Alert{
				ID:       AlertMorningSlowdown,
				Severity: SeverityInfo,
				Title:    "Morning Slowdown Detected",
				Message:  fmt.Sprintf("Morning hours are averaging %.0f%% of the hourly team target", ratio*100),
			})
		}
	}

	return alerts, nil
}

// morningCompletion averages team lines/target over the morning hours up to
// and including through, counting only hours with recorded lines.
func morningCompletion(pickers []*domain.Picker, through int) (float64, bool) {
	active := activePickers(pickers)
	teamTarget := 0
	for _, p := range active {
		teamTarget += domain.HourlyTarget(p.Target)
	}
	if teamTarget == 0 {
		return 0, false
	}

	sum, hours := 0.0, 0
	for h := domain.FirstHour; h <= through; h++ {
		lines := 0
		for _, p := range active {
			lines += p.LinesAt(h)
		}
		if lines == 0 {
			continue
		}
		sum += float64(lines) / float64(teamTarget)
		hours++
	}
	if hours == 0 {
		return 0, false
	}
	return sum / float64(hours), true
}
