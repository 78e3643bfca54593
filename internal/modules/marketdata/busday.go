package marketdata

import (
	"fmt"
	"time"
)

// periodDays maps lookback period names to calendar day counts
var periodDays = map[string]int{
	"1y": 365,
	"6m": 182,
	"3m": 91,
	"1m": 30,
	"1w": 7,
	"1d": 1,
}

// IsBusinessDay reports whether t falls on a weekday.
// Exchange holidays are not modelled; the valuation layer tolerates
// missing prices on them.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// BusinessDaysBetween returns every weekday from start to end inclusive.
// Returns nil when end precedes start.
func BusinessDaysBetween(start, end time.Time) []time.Time {
	start = start.Truncate(24 * time.Hour)
	end = end.Truncate(24 * time.Hour)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// PreviousBusinessDay rolls a date back to the nearest weekday at or before it
func PreviousBusinessDay(t time.Time) time.Time {
	for !IsBusinessDay(t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// PastBusinessDate resolves a lookback period ("1y", "6m", "3m", "1m", "1w",
// "1d") to a past date, rolled back to Friday when it lands on a weekend.
func PastBusinessDate(period string, now time.Time) (time.Time, error) {
	days, ok := periodDays[period]
	if !ok {
		return time.Time{}, fmt.Errorf("invalid period %q", period)
	}

	past := now.AddDate(0, 0, -days)
	return PreviousBusinessDay(past.Truncate(24 * time.Hour)), nil
}
