package ledger

import "time"

// DateOnly is the canonical date layout used throughout the service.
const DateOnly = "2006-01-02"

// Activity kinds found in broker trade-history exports.
const (
	ActivityTrade = "TRADE"
	ActivityCash  = "CASH"
)

// TradeRecord is a single executed trade or cash event from the imported
// trade-history file. Records are the source of truth and are never mutated
// after import.
type TradeRecord struct {
	ID       int64     `json:"id,omitempty"`
	Ticker   string    `json:"ticker"`
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"` // signed: buys positive, sells negative
	Price    float64   `json:"price"`
	Currency string    `json:"currency"`
	Activity string    `json:"activity"`
}

// HoldingSummary describes the lifetime of one ticker in the ledger.
// LastDate is nil while the position is still open (non-zero quantity).
type HoldingSummary struct {
	Ticker          string     `json:"ticker"`
	FirstBuyDate    time.Time  `json:"first_buy_date"`
	CurrentQuantity float64    `json:"current_quantity"`
	LastDate        *time.Time `json:"last_date,omitempty"`
}

// Open reports whether the position is still held.
func (h HoldingSummary) Open() bool {
	return h.LastDate == nil
}

// Day truncates a timestamp to its calendar date in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
