// Package analytics derives shift performance views from a snapshot of pickers.
//
// Every function is pure: inputs are passed explicitly, including the instant
// at which time-dependent values are evaluated. Nothing here performs I/O or
// reads the wall clock. A call either returns a complete result or an error.
package analytics

import (
	"errors"
	"fmt"
	"math"

	"github.com/wms-platform/picker-performance-service/internal/domain"
)

var (
	// ErrInvalidInput marks structurally invalid engine input, such as a nil picker.
	ErrInvalidInput = errors.New("invalid analytics input")
	// ErrPickerNotFound is returned when a single-picker view names an unknown picker.
	ErrPickerNotFound = errors.New("picker not found")
)

func validate(pickers []*domain.Picker) error {
	for i, p := range pickers {
		if p == nil {
			return fmt.Errorf("%w: picker at index %d is nil", ErrInvalidInput, i)
		}
	}
	return nil
}

func activePickers(pickers []*domain.Picker) []*domain.Picker {
	active := make([]*domain.Picker, 0, len(pickers))
	for _, p := range pickers {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	return active
}

func safeDiv(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}

// percent returns n/d*100, or 0 when d is 0
func percent(n, d int) float64 {
	return safeDiv(float64(n)*100, float64(d))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// floorInt floors with a small tolerance so values like 79.99999999 from
// repeated float division land on the integer they represent.
func floorInt(v float64) int {
	return int(math.Floor(v + 1e-9))
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func findPicker(pickers []*domain.Picker, pickerID string) *domain.Picker {
	for _, p := range pickers {
		if p.PickerID == pickerID {
			return p
		}
	}
	return nil
}
