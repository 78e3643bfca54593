package fx

import (
	"errors"
	"testing"
	"time"
)

func d(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAsOf(t *testing.T) {
	series := NewRateSeries(PairGBPUSD,
		[]time.Time{d("2024-01-01"), d("2024-01-10")},
		[]float64{1.25, 1.27})

	tests := []struct {
		name    string
		date    string
		want    float64
		wantErr bool
	}{
		{name: "between entries uses earlier rate", date: "2024-01-05", want: 1.25},
		{name: "exact match", date: "2024-01-10", want: 1.27},
		{name: "after last entry", date: "2024-06-01", want: 1.27},
		{name: "first entry", date: "2024-01-01", want: 1.25},
		{name: "before first entry", date: "2023-12-31", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := series.AsOf(d(tt.date))
			if tt.wantErr {
				if !errors.Is(err, ErrRateUnavailable) {
					t.Errorf("AsOf(%s) error = %v, want ErrRateUnavailable", tt.date, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("AsOf(%s) returned error: %v", tt.date, err)
			}
			if got != tt.want {
				t.Errorf("AsOf(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestAsOfMonotonicBetweenEntries(t *testing.T) {
	series := NewRateSeries(PairGBPEUR,
		[]time.Time{d("2024-01-01"), d("2024-02-01")},
		[]float64{1.16, 1.18})

	// No new entry falls in (d1, d2], so the rate must not change
	r1, err := series.AsOf(d("2024-01-05"))
	if err != nil {
		t.Fatal(err)
	}
	r2, err := series.AsOf(d("2024-01-28"))
	if err != nil {
		t.Fatal(err)
	}
	if r1 != r2 {
		t.Errorf("rate changed from %v to %v with no intervening entry", r1, r2)
	}
}

func TestNewRateSeriesSortsEntries(t *testing.T) {
	series := NewRateSeries(PairGBPUSD,
		[]time.Time{d("2024-01-10"), d("2024-01-01")},
		[]float64{1.27, 1.25})

	got, err := series.AsOf(d("2024-01-02"))
	if err != nil {
		t.Fatal(err)
	}
	if got != 1.25 {
		t.Errorf("AsOf = %v, want 1.25 (entries must be date-sorted)", got)
	}
}

func TestAsOfEmptySeries(t *testing.T) {
	series := NewRateSeries(PairGBPUSD, nil, nil)
	if _, err := series.AsOf(d("2024-01-01")); !errors.Is(err, ErrRateUnavailable) {
		t.Errorf("empty series error = %v, want ErrRateUnavailable", err)
	}
}
