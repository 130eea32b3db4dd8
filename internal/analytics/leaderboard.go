package analytics

import (
	"slices"

	"github.com/wms-platform/picker-performance-service/internal/domain"
)

// Standings relative to target
const (
	StandingAhead   = "ahead"
	StandingOnTrack = "on_track"
	StandingBehind  = "behind"
)

// LeaderboardEntry is one picker's rank in the shift
type LeaderboardEntry struct {
	Rank              int                 `json:"rank"`
	PickerID          string              `json:"pickerId"`
	Name              string              `json:"name"`
	Status            domain.PickerStatus `json:"status"`
	Performance       int                 `json:"performance"`
	Target            int                 `json:"target"`
	CompletionPercent float64             `json:"completionPercent"`
	Standing          string              `json:"standing"`
	Stars             int                 `json:"stars"`
}

func standingFor(pct float64) string {
	switch {
	case pct >= 100:
		return StandingAhead
	case pct >= 80:
		return StandingOnTrack
	default:
		return StandingBehind
	}
}

func starsFor(pct float64) int {
	switch {
	case pct >= 100:
		return 5
	case pct >= 90:
		return 4
	case pct >= 80:
		return 3
	case pct >= 70:
		return 2
	default:
		return 1
	}
}

// Leaderboard ranks pickers by performance, highest first; equal performance keeps input order.
func Leaderboard(pickers []*domain.Picker) ([]LeaderboardEntry, error) {
	if err := validate(pickers); err != nil {
		return nil, err
	}

	ranked := slices.Clone(pickers)
	slices.SortStableFunc(ranked, func(a, b *domain.Picker) int {
		return b.Performance - a.Performance
	})

	entries := make([]LeaderboardEntry, 0, len(ranked))
	for i, p := range ranked {
		pct := percent(p.Performance, p.Target)
		entries = append(entries, LeaderboardEntry{
			Rank:              i + 1,
			PickerID:          p.PickerID,
			Name:              p.Name,
			Status:            p.Status,
			Performance:       p.Performance,
			Target:            p.Target,
			CompletionPercent: pct,
			Standing:          standingFor(pct),
			Stars:             starsFor(pct),
		})
	}
	return entries, nil
}
