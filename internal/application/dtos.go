package application

import (
	"encoding/json"
	"time"

	"github.com/wms-platform/picker-performance-service/internal/analytics"
)

// PickerDTO represents a picker in API responses
type PickerDTO struct {
	PickerID          string           `json:"id"`
	Name              string           `json:"name"`
	Target            int              `json:"target"`
	Performance       int              `json:"performance"`
	CompletionPercent float64          `json:"completionPercent"`
	Status            string           `json:"status"`
	HourlyData        []HourlyDataDTO  `json:"hourlyData"`
	StartTime         string           `json:"startTime"`
	EndTime           string           `json:"endTime"`
	Breaks            []BreakWindowDTO `json:"breaks"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// HourlyDataDTO represents one hour of a picker's record
type HourlyDataDTO struct {
	Hour       int     `json:"hour"`
	Lines      int     `json:"lines"`
	Target     int     `json:"target"`
	Efficiency float64 `json:"efficiency"`
}

// BreakWindowDTO represents a scheduled break
type BreakWindowDTO struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Type      string `json:"type"`
}

// PickerListDTO is a page of pickers
type PickerListDTO struct {
	Pickers []PickerDTO `json:"pickers"`
	Total   int64       `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
}

// ProjectionsDTO groups the end-of-shift projections
type ProjectionsDTO struct {
	EvaluatedAt time.Time                    `json:"evaluatedAt"`
	Team        *analytics.TeamProjection    `json:"team"`
	Pickers     []analytics.PickerProjection `json:"pickers"`
	GapAnalysis []analytics.PickerProjection `json:"gapAnalysis"`
}

// LaborEfficiencyDTO is the efficiency ratio with the series it was computed from
type LaborEfficiencyDTO struct {
	PickerID string                      `json:"pickerId,omitempty"`
	Series   []analytics.CumulativePoint `json:"series"`
	analytics.EfficiencyRatio
}

// SnapshotDTO is a stored dashboard snapshot with its dashboard payload
type SnapshotDTO struct {
	Name        string          `json:"name"`
	SavedBy     string          `json:"savedBy"`
	SavedAt     time.Time       `json:"savedAt"`
	EvaluatedAt time.Time       `json:"evaluatedAt"`
	PickerCount int             `json:"pickerCount"`
	Dashboard   json.RawMessage `json:"dashboard,omitempty"`
}

// ShiftReport is a rendered workbook ready to download
type ShiftReport struct {
	FileName    string
	ContentType string
	Data        []byte
}
