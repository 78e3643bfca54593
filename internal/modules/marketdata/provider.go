package marketdata

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quayside/portfolio-valuer/internal/clients/yahoo"
	"github.com/quayside/portfolio-valuer/internal/modules/ledger"
)

// Feed supplies daily OHLC bars for a symbol
type Feed interface {
	Bars(ctx context.Context, symbol string, start, end time.Time) ([]yahoo.Bar, error)
}

// Store caches real bars between sessions
type Store interface {
	Save(ticker string, points []PricePoint) error
	Load(ticker string, start, end time.Time) ([]PricePoint, error)
}

// Provider fetches daily price series, falling back to previously stored bars
// and then to synthetic interpolation when the feed fails. Feed failures are
// never surfaced to the caller: a fetch always yields a series, tagged with
// how it was obtained.
type Provider struct {
	feed  Feed
	store Store // optional
	log   zerolog.Logger
}

// NewProvider creates a new price provider
func NewProvider(feed Feed, store Store, log zerolog.Logger) *Provider {
	return &Provider{
		feed:  feed,
		store: store,
		log:   log.With().Str("component", "price_provider").Logger(),
	}
}

// Fetch returns the daily price series for a ticker between start and end
// inclusive. A zero end means today. trades is the ticker's trade history,
// used for the synthetic fallback.
func (p *Provider) Fetch(ctx context.Context, ticker string, start, end time.Time, trades []ledger.TradeRecord) Series {
	if end.IsZero() {
		end = time.Now().UTC().Truncate(24 * time.Hour)
	}

	bars, err := p.feed.Bars(ctx, ticker, start, end)
	if err == nil {
		points := p.toPoints(ticker, bars)
		if p.store != nil {
			if serr := p.store.Save(ticker, points); serr != nil {
				p.log.Warn().Err(serr).Str("ticker", ticker).Msg("Failed to store price history")
			}
		}
		return Series{Ticker: ticker, Source: SourceReal, Points: points}
	}

	p.log.Warn().
		Err(err).
		Str("ticker", ticker).
		Msg("Feed unavailable, trying stored history")

	if p.store != nil {
		stored, serr := p.store.Load(ticker, start, end)
		if serr == nil && len(stored) > 0 {
			return Series{Ticker: ticker, Source: SourceReal, Points: stored}
		}
	}

	p.log.Warn().
		Str("ticker", ticker).
		Msg("No stored history, using synthetic data")

	return Series{
		Ticker: ticker,
		Source: SourceSynthetic,
		Points: GenerateSynthetic(ticker, trades),
	}
}

// FetchAll fetches one series per holding, covering each ticker's lifetime
// from first buy to last trade (or today while still held). Tickers are
// fetched independently: one falling back to synthetic data does not affect
// the others.
func (p *Provider) FetchAll(ctx context.Context, holdings []ledger.HoldingSummary, trades []ledger.TradeRecord) map[string]Series {
	byTicker := make(map[string][]ledger.TradeRecord)
	for _, t := range trades {
		byTicker[t.Ticker] = append(byTicker[t.Ticker], t)
	}

	series := make(map[string]Series, len(holdings))
	for _, h := range holdings {
		var end time.Time
		if h.LastDate != nil {
			end = *h.LastDate
		}
		series[h.Ticker] = p.Fetch(ctx, h.Ticker, h.FirstBuyDate, end, byTicker[h.Ticker])
	}

	return series
}

// toPoints converts feed bars into price points, normalizing LSE quotes from
// pence to pounds so that Close is in the major unit everywhere downstream.
func (p *Provider) toPoints(ticker string, bars []yahoo.Bar) []PricePoint {
	divisor := quoteUnitDivisor(ticker)

	points := make([]PricePoint, 0, len(bars))
	for _, b := range bars {
		open, high, low := b.Open/divisor, b.High/divisor, b.Low/divisor
		points = append(points, PricePoint{
			Ticker: ticker,
			Date:   b.Date,
			Open:   &open,
			High:   &high,
			Low:    &low,
			Close:  b.Close / divisor,
			Volume: b.Volume,
		})
	}
	return points
}

// quoteUnitDivisor returns the factor between the feed's quote unit and the
// major currency unit. LSE instruments are quoted in pence.
func quoteUnitDivisor(ticker string) float64 {
	if strings.HasSuffix(ticker, ".L") {
		return 100
	}
	return 1
}
