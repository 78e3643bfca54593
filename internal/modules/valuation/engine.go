package valuation

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/quayside/portfolio-valuer/internal/modules/fx"
	"github.com/quayside/portfolio-valuer/internal/modules/ledger"
	"github.com/quayside/portfolio-valuer/internal/modules/marketdata"
)

// Engine computes total portfolio value in GBP for a target date.
// It is pure: identical inputs always produce the same value and no input is
// ever mutated.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a new valuation engine
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("component", "valuation_engine").Logger(),
	}
}

type position struct {
	quantity float64
	currency string
}

// ValueOnDate computes the GBP portfolio value on the target date.
//
// Positions are reconstructed from trades dated at or before the target.
// A ticker needs a price point on the exact date to contribute; without one
// it is silently excluded, which undervalues rather than fails. Only a
// missing FX rate for a needed conversion halts the computation.
func (e *Engine) ValueOnDate(
	target time.Time,
	trades []ledger.TradeRecord,
	prices map[string]marketdata.Series,
	rates map[string]*fx.RateSeries,
) (float64, error) {
	day := ledger.Day(target)

	// Net quantity and last-seen currency per ticker, up to the target date.
	// The ledger arrives oldest-first, so the last record wins the currency.
	positions := make(map[string]*position)
	for _, t := range trades {
		if ledger.Day(t.Date).After(day) {
			continue
		}
		pos, ok := positions[t.Ticker]
		if !ok {
			pos = &position{}
			positions[t.Ticker] = pos
		}
		pos.quantity += t.Quantity
		pos.currency = t.Currency
	}

	tickers := make([]string, 0, len(positions))
	for ticker, pos := range positions {
		if pos.quantity != 0 {
			tickers = append(tickers, ticker)
		}
	}
	sort.Strings(tickers)

	total := 0.0
	for _, ticker := range tickers {
		pos := positions[ticker]

		close, ok := prices[ticker].CloseOn(day)
		if !ok {
			// No price on the exact date: the ticker contributes nothing.
			// The trading-day policy upstream keeps this rare.
			continue
		}

		value, err := e.convertToGBP(day, pos, close, rates)
		if err != nil {
			return 0, fmt.Errorf("failed to value %s on %s: %w", ticker, day.Format(ledger.DateOnly), err)
		}
		total += value
	}

	return total, nil
}

// convertToGBP converts one position's market value into pounds.
// GBP cross rates are quoted GBP-base (GBPUSD = dollars per pound), so
// foreign values divide by the rate. Close is already in the major unit.
func (e *Engine) convertToGBP(day time.Time, pos *position, close float64, rates map[string]*fx.RateSeries) (float64, error) {
	switch pos.currency {
	case "GBP":
		return pos.quantity * close, nil
	case "USD":
		rate, err := e.asOf(rates, fx.PairGBPUSD, day)
		if err != nil {
			return 0, err
		}
		return pos.quantity / rate * close, nil
	case "EUR":
		rate, err := e.asOf(rates, fx.PairGBPEUR, day)
		if err != nil {
			return 0, err
		}
		return pos.quantity / rate * close, nil
	default:
		e.log.Warn().
			Str("currency", pos.currency).
			Msg("Unsupported currency, position excluded from valuation")
		return 0, nil
	}
}

func (e *Engine) asOf(rates map[string]*fx.RateSeries, pair string, day time.Time) (float64, error) {
	series, ok := rates[pair]
	if !ok || series == nil {
		return 0, fmt.Errorf("no rate series for %s: %w", pair, fx.ErrRateUnavailable)
	}
	rate, err := series.AsOf(day)
	if err != nil {
		return 0, fmt.Errorf("%s as of %s: %w", pair, day.Format(ledger.DateOnly), err)
	}
	return rate, nil
}
