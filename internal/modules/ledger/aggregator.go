package ledger

import (
	"sort"
	"time"
)

// Summarize converts a trade ledger into one HoldingSummary per ticker.
//
// For each ticker it takes the earliest trade date, the latest trade date and
// the signed quantity sum. Tickers whose summed quantity is exactly zero are
// closed positions and keep their latest trade date; open positions report a
// nil LastDate. Empty input yields an empty result.
func Summarize(trades []TradeRecord) []HoldingSummary {
	type group struct {
		first    time.Time
		last     time.Time
		quantity float64
	}

	groups := make(map[string]*group)
	for _, t := range trades {
		day := Day(t.Date)
		g, ok := groups[t.Ticker]
		if !ok {
			groups[t.Ticker] = &group{first: day, last: day, quantity: t.Quantity}
			continue
		}
		if day.Before(g.first) {
			g.first = day
		}
		if day.After(g.last) {
			g.last = day
		}
		g.quantity += t.Quantity
	}

	summaries := make([]HoldingSummary, 0, len(groups))
	for ticker, g := range groups {
		s := HoldingSummary{
			Ticker:          ticker,
			FirstBuyDate:    g.first,
			CurrentQuantity: g.quantity,
		}
		if g.quantity == 0 {
			last := g.last
			s.LastDate = &last
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Ticker < summaries[j].Ticker
	})

	return summaries
}
