package marketdata

import "time"

// Source tags how a price series was obtained
type Source string

const (
	// SourceReal marks data returned by the external daily-bar feed
	SourceReal Source = "real"
	// SourceSynthetic marks data interpolated from the ticker's own trades
	SourceSynthetic Source = "synthetic"
)

// PricePoint is one daily bar for a ticker. Open/High/Low are nil on
// synthetic points; Close is always present and always denominated in the
// major currency unit (pounds, not pence, for LSE instruments).
type PricePoint struct {
	Ticker string     `json:"ticker"`
	Date   time.Time  `json:"date"`
	Open   *float64   `json:"open,omitempty"`
	High   *float64   `json:"high,omitempty"`
	Low    *float64   `json:"low,omitempty"`
	Close  float64    `json:"close"`
	Volume int64      `json:"volume"`
}

// Synthetic reports whether this point was fabricated rather than observed
func (p PricePoint) Synthetic() bool {
	return p.High == nil
}

// Series is the result of one price fetch for a ticker
type Series struct {
	Ticker string       `json:"ticker"`
	Source Source       `json:"source"`
	Points []PricePoint `json:"points"`
}

// CloseOn returns the close for the exact date, if a point exists on it
func (s Series) CloseOn(date time.Time) (float64, bool) {
	day := date.Truncate(24 * time.Hour)
	for _, p := range s.Points {
		if p.Date.Equal(day) {
			return p.Close, true
		}
	}
	return 0, false
}
