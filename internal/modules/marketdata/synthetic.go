package marketdata

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/quayside/portfolio-valuer/internal/modules/ledger"
)

// GenerateSynthetic fabricates a close-only price series for a ticker from its
// own trade history, for use when no external feed is available.
//
// Trades are sorted by date; for every consecutive pair a point is generated
// on each business day between the two trade dates inclusive, with the close
// linearly interpolated over the business-day index. The endpoints reproduce
// the trade prices exactly. Open/High/Low stay nil, which is the marker
// consumers use to tell synthetic points from real ones. A single trade gives
// no interpolation range, so the series is empty. When ranges share a boundary
// day the first generated point for a date wins.
func GenerateSynthetic(ticker string, trades []ledger.TradeRecord) []PricePoint {
	own := make([]ledger.TradeRecord, 0, len(trades))
	for _, t := range trades {
		if t.Ticker == ticker {
			own = append(own, t)
		}
	}
	if len(own) < 2 {
		return nil
	}

	sort.SliceStable(own, func(i, j int) bool {
		return own[i].Date.Before(own[j].Date)
	})

	seen := make(map[string]bool)
	var points []PricePoint

	for i := 0; i < len(own)-1; i++ {
		days := BusinessDaysBetween(own[i].Date, own[i+1].Date)
		if len(days) == 0 {
			continue
		}

		closes := make([]float64, len(days))
		if len(days) == 1 {
			closes[0] = own[i].Price
		} else {
			floats.Span(closes, own[i].Price, own[i+1].Price)
		}

		for j, day := range days {
			key := day.Format(ledger.DateOnly)
			if seen[key] {
				continue
			}
			seen[key] = true

			points = append(points, PricePoint{
				Ticker: ticker,
				Date:   day,
				Close:  closes[j],
				Volume: 0,
			})
		}
	}

	return points
}
