package analytics

import (
	"math"
	"time"

	"github.com/wms-platform/picker-performance-service/internal/domain"
)

// Schedule is the fixed shift window the clock is evaluated against
type Schedule struct {
	StartHour      int
	EndHour        int
	LunchHour      int
	ShortBreakHour int
	Location       *time.Location
}

// DefaultSchedule is 09:00-17:00 with lunch at 12:00 and a short break at 15:00.
func DefaultSchedule() Schedule {
	return Schedule{
		StartHour:      domain.FirstHour,
		EndHour:        domain.LastHour,
		LunchHour:      12,
		ShortBreakHour: 15,
		Location:       time.Local,
	}
}

// NextBreak describes the upcoming break
type NextBreak struct {
	Type     domain.BreakType `json:"type"`
	StartsIn int              `json:"startsIn"`
}

// ShiftProgress is where the shift stands at a given instant. NextBreak is nil,
// and omitted from JSON, once no break remains.
type ShiftProgress struct {
	PercentageComplete float64    `json:"percentageComplete"`
	RemainingTime      int        `json:"remainingTime"`
	IsBreakTime        bool       `json:"isBreakTime"`
	NextBreak          *NextBreak `json:"nextBreak,omitempty"`
}

func (s Schedule) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

func (s Schedule) bounds(now time.Time) (time.Time, time.Time) {
	local := now.In(s.location())
	y, m, d := local.Date()
	start := time.Date(y, m, d, s.StartHour, 0, 0, 0, s.location())
	end := time.Date(y, m, d, s.EndHour, 0, 0, 0, s.location())
	return start, end
}

// Hour returns the wall-clock hour of now in the schedule's location
func (s Schedule) Hour(now time.Time) int {
	return now.In(s.location()).Hour()
}

// ShiftHour clamps the current hour into the shift's hourly buckets
func (s Schedule) ShiftHour(now time.Time) int {
	h := s.Hour(now)
	if h < s.StartHour {
		return s.StartHour
	}
	if h > s.EndHour {
		return s.EndHour
	}
	return h
}

// RemainingHours is the number of whole hours left before the end hour, never negative.
func (s Schedule) RemainingHours(now time.Time) int {
	r := s.EndHour - s.Hour(now)
	if r < 0 {
		return 0
	}
	return r
}

// ElapsedHours is the hours since shift start, clamped to [0.1, shift length]
// so rates stay finite in the first minutes.
func (s Schedule) ElapsedHours(now time.Time) float64 {
	return clamp(float64(s.Hour(now)-s.StartHour), 0.1, float64(s.EndHour-s.StartHour))
}

// Progress evaluates the shift clock at now
func (s Schedule) Progress(now time.Time) ShiftProgress {
	start, end := s.bounds(now)
	total := end.Sub(start).Minutes()
	elapsed := now.Sub(start).Minutes()

	progress := ShiftProgress{
		PercentageComplete: clamp(safeDiv(elapsed*100, total), 0, 100),
		RemainingTime:      int(math.Round(math.Max(0, end.Sub(now).Minutes()))),
	}

	local := now.In(s.location())
	hour, minute := local.Hour(), local.Minute()
	progress.IsBreakTime = hour == s.LunchHour

	switch {
	case hour < s.LunchHour:
		progress.NextBreak = &NextBreak{Type: domain.BreakTypeLunch, StartsIn: (s.LunchHour-hour)*60 - minute}
	case hour < s.ShortBreakHour:
		progress.NextBreak = &NextBreak{Type: domain.BreakTypeShort, StartsIn: (s.ShortBreakHour-hour)*60 - minute}
	}

	return progress
}
