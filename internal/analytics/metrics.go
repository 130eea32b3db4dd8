package analytics

import (
	"github.com/wms-platform/picker-performance-service/internal/domain"
)

// PerformerSummary identifies a picker together with a line count and its efficiency ratio.
type PerformerSummary struct {
	PickerID   string  `json:"pickerId"`
	Name       string  `json:"name"`
	Lines      int     `json:"lines"`
	Efficiency float64 `json:"efficiency"`
}

// HourlyAnalysis aggregates one shift hour across all pickers
type HourlyAnalysis struct {
	Hour         int              `json:"hour"`
	TotalLines   int              `json:"totalLines"`
	AverageLines float64          `json:"averageLines"`
	TopPerformer PerformerSummary `json:"topPerformer"`
}

// PerformanceMetrics is the aggregate view over a picker snapshot
type PerformanceMetrics struct {
	TotalLines            int              `json:"totalLines"`
	TotalTarget           int              `json:"totalTarget"`
	AverageLinesPerPicker float64          `json:"averageLinesPerPicker"`
	AverageLinesPerHour   float64          `json:"averageLinesPerHour"`
	EfficiencyScore       float64          `json:"efficiencyScore"`
	BestPerformer         PerformerSummary `json:"bestPerformer"`
	WorstPerformer        PerformerSummary `json:"worstPerformer"`
	HourlyAnalysis        []HourlyAnalysis `json:"hourlyAnalysis"`
}

// ComputeMetrics builds PerformanceMetrics. Best and worst performers are picked
// by cumulative performance, first occurrence winning ties; their efficiency is
// performance/target as a ratio.
func ComputeMetrics(pickers []*domain.Picker) (*PerformanceMetrics, error) {
	if err := validate(pickers); err != nil {
		return nil, err
	}

	m := &PerformanceMetrics{HourlyAnalysis: make([]HourlyAnalysis, 0, domain.HourCount)}
	if len(pickers) == 0 {
		return m, nil
	}

	best, worst := pickers[0], pickers[0]
	for _, p := range pickers {
		m.TotalLines += p.Performance
		m.TotalTarget += p.Target
		if p.Performance > best.Performance {
			best = p
		}
		if p.Performance < worst.Performance {
			worst = p
		}
	}

	m.AverageLinesPerPicker = safeDiv(float64(m.TotalLines), float64(len(pickers)))
	m.EfficiencyScore = percent(m.TotalLines, m.TotalTarget)
	m.AverageLinesPerHour = averageLinesPerActiveHour(pickers)
	m.BestPerformer = overallSummary(best)
	m.WorstPerformer = overallSummary(worst)

	for hour := domain.FirstHour; hour <= domain.LastHour; hour++ {
		m.HourlyAnalysis = append(m.HourlyAnalysis, analyzeHourTotals(pickers, hour))
	}

	return m, nil
}

func overallSummary(p *domain.Picker) PerformerSummary {
	return PerformerSummary{
		PickerID:   p.PickerID,
		Name:       p.Name,
		Lines:      p.Performance,
		Efficiency: safeDiv(float64(p.Performance), float64(p.Target)),
	}
}

// averageLinesPerActiveHour divides by the number of hours in which at least
// one picker recorded lines, so idle hours do not dilute the rate.
func averageLinesPerActiveHour(pickers []*domain.Picker) float64 {
	hoursWithData := 0
	lines := 0
	for hour := domain.FirstHour; hour <= domain.LastHour; hour++ {
		inHour := 0
		active := false
		for _, p := range pickers {
			if l := p.LinesAt(hour); l > 0 {
				inHour += l
				active = true
			}
		}
		if active {
			hoursWithData++
			lines += inHour
		}
	}
	return safeDiv(float64(lines), float64(hoursWithData))
}

func analyzeHourTotals(pickers []*domain.Picker, hour int) HourlyAnalysis {
	total := 0
	var top *domain.Picker
	topLines := 0
	for _, p := range pickers {
		lines := p.LinesAt(hour)
		total += lines
		if top == nil || lines > topLines {
			top, topLines = p, lines
		}
	}

	entry := top.HourEntry(hour)
	return HourlyAnalysis{
		Hour:         hour,
		TotalLines:   total,
		AverageLines: safeDiv(float64(total), float64(len(pickers))),
		TopPerformer: PerformerSummary{
			PickerID:   top.PickerID,
			Name:       top.Name,
			Lines:      entry.Lines,
			Efficiency: entry.Efficiency,
		},
	}
}
