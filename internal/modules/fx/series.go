package fx

import (
	"errors"
	"sort"
	"time"
)

// ErrRateUnavailable is returned when a query date precedes the first known
// rate in a series. Rates are never extrapolated backward.
var ErrRateUnavailable = errors.New("fx rate unavailable for requested date")

type entry struct {
	date time.Time
	rate float64
}

// RateSeries is a date-ordered GBP cross-rate series for one currency pair,
// queryable as-of any date.
type RateSeries struct {
	pair    string
	entries []entry
}

// NewRateSeries builds a series from parallel date/rate slices.
// Entries are sorted by date.
func NewRateSeries(pair string, dates []time.Time, rates []float64) *RateSeries {
	entries := make([]entry, len(dates))
	for i := range dates {
		entries[i] = entry{date: dates[i].Truncate(24 * time.Hour), rate: rates[i]}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].date.Before(entries[j].date)
	})

	return &RateSeries{pair: pair, entries: entries}
}

// Pair returns the currency pair name, e.g. "GBPUSD"
func (s *RateSeries) Pair() string {
	return s.pair
}

// Len returns the number of rate entries
func (s *RateSeries) Len() int {
	return len(s.entries)
}

// AsOf returns the latest rate at or before the given date. It fails with
// ErrRateUnavailable when the date precedes the first known entry.
func (s *RateSeries) AsOf(date time.Time) (float64, error) {
	day := date.Truncate(24 * time.Hour)

	// First index whose date is after the query day
	idx := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].date.After(day)
	})
	if idx == 0 {
		return 0, ErrRateUnavailable
	}

	return s.entries[idx-1].rate, nil
}
