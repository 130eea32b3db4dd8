package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Errors
var (
	ErrInvalidHour      = errors.New("invalid hour: must be between 9 and 17")
	ErrNegativeLines    = errors.New("lines cannot be negative")
	ErrInvalidTarget    = errors.New("invalid target: must be zero or greater")
	ErrInvalidStatus    = errors.New("invalid status: must be active, break or offline")
	ErrPickerIDRequired = errors.New("picker id is required")
	ErrNameRequired     = errors.New("picker name is required")
	ErrInvalidBreak     = errors.New("invalid break window")
)

// Shift window. Hourly buckets run from FirstHour to LastHour inclusive; the
// daily target is spread over ShiftHours.
const (
	FirstHour  = 9
	LastHour   = 17
	ShiftHours = 8
	HourCount  = LastHour - FirstHour + 1

	DefaultStartTime = "09:00"
	DefaultEndTime   = "17:00"
)

// PickerStatus represents the status of a picker
type PickerStatus string

const (
	PickerStatusActive  PickerStatus = "active"
	PickerStatusBreak   PickerStatus = "break"
	PickerStatusOffline PickerStatus = "offline"
)

// ParsePickerStatus validates a status string
func ParsePickerStatus(s string) (PickerStatus, error) {
	switch PickerStatus(strings.ToLower(strings.TrimSpace(s))) {
	case PickerStatusActive:
		return PickerStatusActive, nil
	case PickerStatusBreak:
		return PickerStatusBreak, nil
	case PickerStatusOffline:
		return PickerStatusOffline, nil
	}
	return "", ErrInvalidStatus
}

// BreakType is the kind of scheduled break
type BreakType string

const (
	BreakTypeLunch BreakType = "lunch"
	BreakTypeShort BreakType = "short"
)

// Picker is the aggregate root: one warehouse worker tracked for one shift.
// HourlyData is the source of truth; Performance is always derived from it.
type Picker struct {
	PickerID     string        `bson:"pickerId" json:"id"`
	Name         string        `bson:"name" json:"name"`
	Target       int           `bson:"target" json:"target"`
	Performance  int           `bson:"performance" json:"performance"`
	Status       PickerStatus  `bson:"status" json:"status"`
	HourlyData   []HourlyData  `bson:"hourlyData" json:"hourlyData"`
	StartTime    string        `bson:"startTime" json:"startTime"`
	EndTime      string        `bson:"endTime" json:"endTime"`
	Breaks       []BreakWindow `bson:"breaks" json:"breaks"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
	DomainEvents []DomainEvent `bson:"-" json:"-"`
}

// HourlyData is one hour's record for one picker
type HourlyData struct {
	Hour       int     `bson:"hour" json:"hour"`
	Lines      int     `bson:"lines" json:"lines"`
	Target     int     `bson:"target" json:"target"`
	Efficiency float64 `bson:"efficiency" json:"efficiency"`
}

// BreakWindow is a scheduled break, times as "HH:MM"
type BreakWindow struct {
	StartTime string    `bson:"startTime" json:"startTime"`
	EndTime   string    `bson:"endTime" json:"endTime"`
	Type      BreakType `bson:"type" json:"type"`
}

// HourlyTarget spreads a daily target over the shift hours, rounded half up.
func HourlyTarget(dailyTarget int) int {
	if dailyTarget <= 0 {
		return 0
	}
	return int(math.Round(float64(dailyTarget) / ShiftHours))
}

// ValidHour reports whether hour is a shift bucket
func ValidHour(hour int) bool {
	return hour >= FirstHour && hour <= LastHour
}

func ratio(lines, target int) float64 {
	if target <= 0 {
		return 0
	}
	return float64(lines) / float64(target)
}

// NewPicker creates an active picker with an empty hourly sequence and the default breaks.
func NewPicker(pickerID, name string, target int) (*Picker, error) {
	pickerID = strings.TrimSpace(pickerID)
	name = strings.TrimSpace(name)
	if pickerID == "" {
		return nil, ErrPickerIDRequired
	}
	if name == "" {
		return nil, ErrNameRequired
	}
	if target < 0 {
		return nil, ErrInvalidTarget
	}

	now := time.Now().UTC()
	hourly := make([]HourlyData, 0, HourCount)
	for h := FirstHour; h <= LastHour; h++ {
		hourly = append(hourly, HourlyData{Hour: h, Target: HourlyTarget(target)})
	}

	p := &Picker{
		PickerID:   pickerID,
		Name:       name,
		Target:     target,
		Status:     PickerStatusActive,
		HourlyData: hourly,
		StartTime:  DefaultStartTime,
		EndTime:    DefaultEndTime,
		Breaks: []BreakWindow{
			{StartTime: "12:00", EndTime: "13:00", Type: BreakTypeLunch},
			{StartTime: "15:00", EndTime: "15:15", Type: BreakTypeShort},
		},
		CreatedAt:    now,
		UpdatedAt:    now,
		DomainEvents: make([]DomainEvent, 0),
	}

	p.AddDomainEvent(&PickerRegisteredEvent{
		PickerID:     pickerID,
		Name:         name,
		Target:       target,
		RegisteredAt: now,
	})

	return p, nil
}

// HourEntry returns the record for hour, or a zero record when none exists.
func (p *Picker) HourEntry(hour int) HourlyData {
	for _, h := range p.HourlyData {
		if h.Hour == hour {
			return h
		}
	}
	return HourlyData{Hour: hour}
}

// LinesAt returns the lines recorded for hour, 0 when missing.
func (p *Picker) LinesAt(hour int) int {
	return p.HourEntry(hour).Lines
}

// IsActive reports whether the picker is currently working
func (p *Picker) IsActive() bool {
	return p.Status == PickerStatusActive
}

// RecordHourlyLines sets the lines for one hour and recomputes Performance from the whole sequence.
func (p *Picker) RecordHourlyLines(hour, lines int) error {
	if !ValidHour(hour) {
		return ErrInvalidHour
	}
	if lines < 0 {
		return ErrNegativeLines
	}

	hourlyTarget := HourlyTarget(p.Target)
	previous := 0
	found := false
	for i := range p.HourlyData {
		if p.HourlyData[i].Hour == hour {
			previous = p.HourlyData[i].Lines
			p.HourlyData[i].Lines = lines
			p.HourlyData[i].Target = hourlyTarget
			p.HourlyData[i].Efficiency = ratio(lines, hourlyTarget)
			found = true
			break
		}
	}
	if !found {
		p.HourlyData = append(p.HourlyData, HourlyData{
			Hour:       hour,
			Lines:      lines,
			Target:     hourlyTarget,
			Efficiency: ratio(lines, hourlyTarget),
		})
		p.sortHours()
	}

	p.recomputePerformance()
	p.UpdatedAt = time.Now().UTC()

	p.AddDomainEvent(&HourlyLinesRecordedEvent{
		PickerID:      p.PickerID,
		Hour:          hour,
		Lines:         lines,
		PreviousLines: previous,
		Performance:   p.Performance,
		Target:        p.Target,
		RecordedAt:    p.UpdatedAt,
	})
	return nil
}

func (p *Picker) recomputePerformance() {
	total := 0
	for _, h := range p.HourlyData {
		total += h.Lines
	}
	p.Performance = total
}

func (p *Picker) sortHours() {
	// insertion sort, the sequence has at most HourCount entries
	for i := 1; i < len(p.HourlyData); i++ {
		for j := i; j > 0 && p.HourlyData[j].Hour < p.HourlyData[j-1].Hour; j-- {
			p.HourlyData[j], p.HourlyData[j-1] = p.HourlyData[j-1], p.HourlyData[j]
		}
	}
}

// UpdateTarget changes the daily target and re-derives every hourly target and efficiency.
func (p *Picker) UpdateTarget(target int) error {
	if target < 0 {
		return ErrInvalidTarget
	}
	if target == p.Target {
		return nil
	}

	previous := p.Target
	p.Target = target
	hourlyTarget := HourlyTarget(target)
	for i := range p.HourlyData {
		p.HourlyData[i].Target = hourlyTarget
		p.HourlyData[i].Efficiency = ratio(p.HourlyData[i].Lines, hourlyTarget)
	}
	p.UpdatedAt = time.Now().UTC()

	p.AddDomainEvent(&PickerTargetChangedEvent{
		PickerID:       p.PickerID,
		PreviousTarget: previous,
		Target:         target,
		ChangedAt:      p.UpdatedAt,
	})
	return nil
}

// Rename changes the display name
func (p *Picker) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	p.Name = name
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// ChangeStatus moves the picker between active, break and offline
func (p *Picker) ChangeStatus(status PickerStatus) error {
	if _, err := ParsePickerStatus(string(status)); err != nil {
		return err
	}
	if status == p.Status {
		return nil
	}

	previous := p.Status
	p.Status = status
	p.UpdatedAt = time.Now().UTC()

	p.AddDomainEvent(&PickerStatusChangedEvent{
		PickerID:       p.PickerID,
		PreviousStatus: string(previous),
		Status:         string(status),
		ChangedAt:      p.UpdatedAt,
	})
	return nil
}

// AddBreak schedules a break window. Times are "HH:MM" and start must precede end.
func (p *Picker) AddBreak(start, end string, breakType BreakType) error {
	if breakType != BreakTypeLunch && breakType != BreakTypeShort {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidBreak, breakType)
	}
	s, err := time.Parse("15:04", start)
	if err != nil {
		return fmt.Errorf("%w: start %q", ErrInvalidBreak, start)
	}
	e, err := time.Parse("15:04", end)
	if err != nil {
		return fmt.Errorf("%w: end %q", ErrInvalidBreak, end)
	}
	if !s.Before(e) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidBreak)
	}

	p.Breaks = append(p.Breaks, BreakWindow{StartTime: start, EndTime: end, Type: breakType})
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// AddDomainEvent adds a domain event
func (p *Picker) AddDomainEvent(event DomainEvent) {
	p.DomainEvents = append(p.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (p *Picker) ClearDomainEvents() {
	p.DomainEvents = make([]DomainEvent, 0)
}

// GetDomainEvents returns all domain events
func (p *Picker) GetDomainEvents() []DomainEvent {
	return p.DomainEvents
}
