package valuation

import (
	"sort"

	"github.com/markcheno/go-talib"
)

// HistoryPoint is one dated portfolio value, raw or smoothed
type HistoryPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// SortedHistory flattens a date->value map into chronological points
func SortedHistory(values map[string]float64) []HistoryPoint {
	points := make([]HistoryPoint, 0, len(values))
	for date, value := range values {
		points = append(points, HistoryPoint{Date: date, Value: value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// SmoothedHistory applies a simple moving average over the chronological
// value history. Daily valuations are noisy when a ticker drops out for a
// day; the SMA gives charts a stable line. The first window-1 days have no
// full window and are omitted. Windows below 2 return the raw history.
func SmoothedHistory(values map[string]float64, window int) []HistoryPoint {
	points := SortedHistory(values)
	if window < 2 || len(points) < window {
		return points
	}

	raw := make([]float64, len(points))
	for i, p := range points {
		raw[i] = p.Value
	}

	smoothed := talib.Sma(raw, window)

	out := make([]HistoryPoint, 0, len(points)-window+1)
	for i := window - 1; i < len(points); i++ {
		out = append(out, HistoryPoint{Date: points[i].Date, Value: smoothed[i]})
	}
	return out
}
