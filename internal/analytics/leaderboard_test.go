package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/picker-performance-service/internal/domain"
)

func TestLeaderboard(t *testing.T) {
	pickers := []*domain.Picker{
		newPicker(t, "P-1", "John Smith", 100, 50),
		newPicker(t, "P-2", "Sarah Johnson", 120, 120),
		newPicker(t, "P-3", "Mike Wilson", 110, 50),
		newPicker(t, "P-4", "Ana Lopez", 100, 85),
	}

	board, err := Leaderboard(pickers)
	require.NoError(t, err)
	require.Len(t, board, 4)

	expected := []struct {
		id       string
		rank     int
		standing string
		stars    int
	}{
		{"P-2", 1, StandingAhead, 5},
		{"P-4", 2, StandingOnTrack, 3},
		{"P-1", 3, StandingBehind, 1},
		{"P-3", 4, StandingBehind, 1},
	}
	for i, e := range expected {
		assert.Equal(t, e.id, board[i].PickerID)
		assert.Equal(t, e.rank, board[i].Rank)
		assert.Equal(t, e.standing, board[i].Standing)
		assert.Equal(t, e.stars, board[i].Stars)
	}
	assert.Equal(t, 100.0, board[0].CompletionPercent)

	// input order is untouched
	assert.Equal(t, "P-1", pickers[0].PickerID)
}

func TestStarsFor(t *testing.T) {
	assert.Equal(t, 5, starsFor(140))
	assert.Equal(t, 4, starsFor(90))
	assert.Equal(t, 3, starsFor(80))
	assert.Equal(t, 2, starsFor(70))
	assert.Equal(t, 1, starsFor(69.9))
	assert.Equal(t, 1, starsFor(0))
}
