package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedHistory(t *testing.T) {
	points := SortedHistory(map[string]float64{
		"2024-03-15": 3,
		"2024-03-13": 1,
		"2024-03-14": 2,
	})

	require.Len(t, points, 3)
	assert.Equal(t, "2024-03-13", points[0].Date)
	assert.Equal(t, "2024-03-15", points[2].Date)
	assert.Equal(t, 1.0, points[0].Value)
}

func TestSmoothedHistory(t *testing.T) {
	values := map[string]float64{
		"2024-03-11": 1,
		"2024-03-12": 2,
		"2024-03-13": 3,
		"2024-03-14": 4,
	}

	points := SmoothedHistory(values, 2)
	require.Len(t, points, 3, "the first window-1 days have no full window")

	assert.Equal(t, "2024-03-12", points[0].Date)
	assert.InDelta(t, 1.5, points[0].Value, 1e-9)
	assert.InDelta(t, 2.5, points[1].Value, 1e-9)
	assert.InDelta(t, 3.5, points[2].Value, 1e-9)
}

func TestSmoothedHistoryDegenerateWindows(t *testing.T) {
	values := map[string]float64{
		"2024-03-11": 1,
		"2024-03-12": 2,
	}

	assert.Len(t, SmoothedHistory(values, 1), 2, "window below 2 returns the raw history")
	assert.Len(t, SmoothedHistory(values, 5), 2, "window longer than the history returns it raw")
}
