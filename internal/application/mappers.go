package application

import (
	"math"

	"github.com/wms-platform/picker-performance-service/internal/domain"
)

// ToPickerDTO converts a domain Picker to PickerDTO
func ToPickerDTO(picker *domain.Picker) *PickerDTO {
	if picker == nil {
		return nil
	}

	dto := &PickerDTO{
		PickerID:          picker.PickerID,
		Name:              picker.Name,
		Target:            picker.Target,
		Performance:       picker.Performance,
		CompletionPercent: completionPercent(picker.Performance, picker.Target),
		Status:            string(picker.Status),
		HourlyData:        make([]HourlyDataDTO, 0, len(picker.HourlyData)),
		StartTime:         picker.StartTime,
		EndTime:           picker.EndTime,
		Breaks:            make([]BreakWindowDTO, 0, len(picker.Breaks)),
		CreatedAt:         picker.CreatedAt,
		UpdatedAt:         picker.UpdatedAt,
	}

	for _, h := range picker.HourlyData {
		dto.HourlyData = append(dto.HourlyData, HourlyDataDTO{
			Hour:       h.Hour,
			Lines:      h.Lines,
			Target:     h.Target,
			Efficiency: h.Efficiency,
		})
	}

	for _, b := range picker.Breaks {
		dto.Breaks = append(dto.Breaks, BreakWindowDTO{
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			Type:      string(b.Type),
		})
	}

	return dto
}

// ToPickerDTOs converts a slice of domain Pickers
func ToPickerDTOs(pickers []*domain.Picker) []PickerDTO {
	dtos := make([]PickerDTO, 0, len(pickers))
	for _, p := range pickers {
		if dto := ToPickerDTO(p); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToSnapshotDTO converts a stored snapshot; the payload is included only when withPayload is set
func ToSnapshotDTO(snapshot *domain.DashboardSnapshot, withPayload bool) *SnapshotDTO {
	if snapshot == nil {
		return nil
	}
	dto := &SnapshotDTO{
		Name:        snapshot.Name,
		SavedBy:     snapshot.SavedBy,
		SavedAt:     snapshot.SavedAt,
		EvaluatedAt: snapshot.EvaluatedAt,
		PickerCount: snapshot.PickerCount,
	}
	if withPayload && len(snapshot.Payload) > 0 {
		dto.Dashboard = snapshot.Payload
	}
	return dto
}

// ToSnapshotSummaryDTOs converts snapshot listings
func ToSnapshotSummaryDTOs(summaries []domain.SnapshotSummary) []SnapshotDTO {
	dtos := make([]SnapshotDTO, 0, len(summaries))
	for _, s := range summaries {
		dtos = append(dtos, SnapshotDTO{
			Name:        s.Name,
			SavedBy:     s.SavedBy,
			SavedAt:     s.SavedAt,
			EvaluatedAt: s.EvaluatedAt,
			PickerCount: s.PickerCount,
		})
	}
	return dtos
}

func completionPercent(performance, target int) float64 {
	if target <= 0 {
		return 0
	}
	return math.Round(float64(performance)*1000/float64(target)) / 10
}
