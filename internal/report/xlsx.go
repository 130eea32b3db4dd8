// Package report renders shift reports for download.
package report

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/wms-platform/picker-performance-service/internal/analytics"
	"github.com/wms-platform/picker-performance-service/internal/domain"
)

const (
	PickersSheet = "Pickers"
	SummarySheet = "Summary"

	// ContentType is the media type of the rendered workbook
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var pickerColumns = []string{"Picker ID", "Name", "Status", "Target", "Performance", "Completion %"}

// FileName returns the download name for a report evaluated at the dashboard instant
func FileName(d *analytics.Dashboard) string {
	return fmt.Sprintf("shift-report-%s.xlsx", d.EvaluatedAt.Format("2006-01-02-1504"))
}

// RenderShiftReport writes a workbook with one row per picker and a summary
// sheet built from the dashboard. The dashboard must come from the same picker snapshot.
func RenderShiftReport(d *analytics.Dashboard, pickers []*domain.Picker) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("render shift report: dashboard is nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PickersSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writePickers(f, pickers, header); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeSummary(f, d, header); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writePickers(f *excelize.File, pickers []*domain.Picker, header int) error {
	columns := append([]string{}, pickerColumns...)
	for h := domain.FirstHour; h <= domain.LastHour; h++ {
		columns = append(columns, fmt.Sprintf("%d:00", h))
	}

	for i, title := range columns {
		if err := setCell(f, PickersSheet, i+1, 1, title); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(PickersSheet, "A1", last, header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(PickersSheet, "B", "B", 22); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	for r, p := range pickers {
		row := r + 2
		values := []any{p.PickerID, p.Name, string(p.Status), p.Target, p.Performance, completion(p.Performance, p.Target)}
		for h := domain.FirstHour; h <= domain.LastHour; h++ {
			values = append(values, p.LinesAt(h))
		}
		for c, v := range values {
			if err := setCell(f, PickersSheet, c+1, row, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSummary(f *excelize.File, d *analytics.Dashboard, header int) error {
	rows := [][]any{
		{"Metric", "Value"},
		{"Evaluated At", d.EvaluatedAt.Format("2006-01-02 15:04")},
		{"Pickers", d.PickerCount},
		{"Active Pickers", d.ActivePickers},
	}
	if m := d.Metrics; m != nil {
		rows = append(rows,
			[]any{"Total Lines", m.TotalLines},
			[]any{"Total Target", m.TotalTarget},
			[]any{"Efficiency Score", round1(m.EfficiencyScore)},
			[]any{"Best Performer", m.BestPerformer.Name},
			[]any{"Worst Performer", m.WorstPerformer.Name},
		)
	}
	if t := d.Team; t != nil {
		rows = append(rows,
			[]any{"Projected Total", t.ProjectedTotal},
			[]any{"Shortfall", t.Shortfall},
			[]any{"On Track", t.OnTrack},
		)
	}
	if c := d.Consistency; c != nil {
		rows = append(rows, []any{"Consistency", c.Score})
	}
	rows = append(rows,
		[]any{"Labor Efficiency Ratio", d.LaborEfficiency.Ratio},
		[]any{"Labor Efficiency Band", d.LaborEfficiency.Band},
	)

	for r, values := range rows {
		for c, v := range values {
			if err := setCell(f, SummarySheet, c+1, r+1, v); err != nil {
				return err
			}
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", header); err != nil {
		return fmt.Errorf("style summary header: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "A", 26)
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
	}
	return nil
}

func completion(performance, target int) float64 {
	if target <= 0 {
		return 0
	}
	return round1(float64(performance) * 100 / float64(target))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
