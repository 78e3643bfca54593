package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/quayside/portfolio-valuer/internal/events"
	"github.com/quayside/portfolio-valuer/internal/modules/fx"
	"github.com/quayside/portfolio-valuer/internal/modules/ledger"
	"github.com/quayside/portfolio-valuer/internal/modules/marketdata"
	"github.com/quayside/portfolio-valuer/internal/modules/valuation"
)

// TradeStore is the ledger persistence the service depends on
type TradeStore interface {
	InsertBatch(accountID string, trades []ledger.TradeRecord) error
	GetAll(accountID string) ([]ledger.TradeRecord, error)
	EarliestTradeDate(accountID string) (*time.Time, error)
}

// PriceSource supplies one price series per holding
type PriceSource interface {
	FetchAll(ctx context.Context, holdings []ledger.HoldingSummary, trades []ledger.TradeRecord) map[string]marketdata.Series
}

// RateSource supplies GBP cross-rate series
type RateSource interface {
	Series(ctx context.Context, pair string, start time.Time) (*fx.RateSeries, error)
}

// Valuer computes a single-date portfolio value
type Valuer interface {
	ValueOnDate(target time.Time, trades []ledger.TradeRecord, prices map[string]marketdata.Series, rates map[string]*fx.RateSeries) (float64, error)
}

// HistoryService maintains the cached valuation history
type HistoryService interface {
	ValueHistory(accountID string, trades []ledger.TradeRecord, prices map[string]marketdata.Series, rates map[string]*fx.RateSeries) (map[string]float64, error)
}

// PortfolioService orchestrates a full valuation: load the ledger, derive
// holdings, assemble price and rate series, then hand off to the valuation
// engine. It is the single entry point used by both the HTTP handlers and the
// nightly revaluation job.
type PortfolioService struct {
	trades   TradeStore
	importer *ledger.Importer
	prices   PriceSource
	rates    RateSource
	engine   Valuer
	history  HistoryService
	events   *events.Manager
	log      zerolog.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(
	trades TradeStore,
	importer *ledger.Importer,
	prices PriceSource,
	rates RateSource,
	engine Valuer,
	history HistoryService,
	eventManager *events.Manager,
	log zerolog.Logger,
) *PortfolioService {
	return &PortfolioService{
		trades:   trades,
		importer: importer,
		prices:   prices,
		rates:    rates,
		engine:   engine,
		history:  history,
		events:   eventManager,
		log:      log.With().Str("service", "portfolio").Logger(),
	}
}

// ImportLedger parses a trade-history export and stores its records
func (s *PortfolioService) ImportLedger(accountID string, r io.Reader) (ledger.ImportResult, error) {
	result, err := s.importer.Parse(r)
	if err != nil {
		return ledger.ImportResult{}, fmt.Errorf("failed to parse trade history: %w", err)
	}

	if len(result.Trades) > 0 {
		if err := s.trades.InsertBatch(accountID, result.Trades); err != nil {
			return ledger.ImportResult{}, fmt.Errorf("failed to store trades: %w", err)
		}
	}

	s.log.Info().
		Str("account_id", accountID).
		Int("imported", len(result.Trades)).
		Int("skipped", result.Skipped).
		Msg("Ledger imported")

	s.events.Emit(events.LedgerImported, "portfolio", map[string]interface{}{
		"account_id": accountID,
		"imported":   len(result.Trades),
		"skipped":    result.Skipped,
	})

	return result, nil
}

// Holdings returns the per-ticker holding summaries for an account
func (s *PortfolioService) Holdings(accountID string) ([]ledger.HoldingSummary, error) {
	trades, err := s.trades.GetAll(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return ledger.Summarize(trades), nil
}

// ValueOnDate computes the GBP portfolio value for a single date.
// A missing FX rate fails the request; missing prices merely shrink it.
func (s *PortfolioService) ValueOnDate(ctx context.Context, accountID string, date time.Time) (float64, error) {
	inputs, err := s.assemble(ctx, accountID)
	if err != nil {
		return 0, err
	}
	if len(inputs.trades) == 0 {
		return 0, nil
	}

	value, err := s.engine.ValueOnDate(date, inputs.trades, inputs.prices, inputs.rates)
	if err != nil {
		return 0, err
	}

	s.events.Emit(events.ValuationComputed, "portfolio", map[string]interface{}{
		"account_id": accountID,
		"date":       ledger.Day(date).Format(ledger.DateOnly),
		"value_gbp":  value,
	})

	return value, nil
}

// ValueHistory returns the cached date->value history for an account,
// filling in any dates not yet computed
func (s *PortfolioService) ValueHistory(ctx context.Context, accountID string) (map[string]float64, error) {
	inputs, err := s.assemble(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(inputs.trades) == 0 {
		return map[string]float64{}, nil
	}

	values, err := s.history.ValueHistory(accountID, inputs.trades, inputs.prices, inputs.rates)
	if err != nil {
		return values, err
	}

	s.events.Emit(events.HistoryRecomputed, "portfolio", map[string]interface{}{
		"account_id": accountID,
		"dates":      len(values),
	})

	return values, nil
}

type valuationInputs struct {
	trades []ledger.TradeRecord
	prices map[string]marketdata.Series
	rates  map[string]*fx.RateSeries
}

// assemble gathers everything a valuation needs: the full ledger, a price
// series per holding and a rate series per foreign currency in the ledger.
func (s *PortfolioService) assemble(ctx context.Context, accountID string) (valuationInputs, error) {
	trades, err := s.trades.GetAll(accountID)
	if err != nil {
		return valuationInputs{}, fmt.Errorf("failed to load ledger: %w", err)
	}
	if len(trades) == 0 {
		return valuationInputs{}, nil
	}

	holdings := ledger.Summarize(trades)
	prices := s.prices.FetchAll(ctx, holdings, trades)

	rates, err := s.fetchRates(ctx, trades)
	if err != nil {
		return valuationInputs{}, err
	}

	return valuationInputs{trades: trades, prices: prices, rates: rates}, nil
}

// fetchRates fetches one series per foreign currency present in the ledger,
// starting at the earliest trade so every valuation date is covered
func (s *PortfolioService) fetchRates(ctx context.Context, trades []ledger.TradeRecord) (map[string]*fx.RateSeries, error) {
	start := ledger.Day(trades[0].Date)
	pairs := make(map[string]bool)
	for _, t := range trades {
		if ledger.Day(t.Date).Before(start) {
			start = ledger.Day(t.Date)
		}
		switch t.Currency {
		case "USD":
			pairs[fx.PairGBPUSD] = true
		case "EUR":
			pairs[fx.PairGBPEUR] = true
		}
	}

	rates := make(map[string]*fx.RateSeries, len(pairs))
	for pair := range pairs {
		series, err := s.rates.Series(ctx, pair, start)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s rates: %w", pair, err)
		}
		rates[pair] = series
	}

	return rates, nil
}

// SmoothedValueHistory returns the value history as a chronological series
// smoothed with a simple moving average
func (s *PortfolioService) SmoothedValueHistory(ctx context.Context, accountID string, window int) ([]valuation.HistoryPoint, error) {
	values, err := s.ValueHistory(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return valuation.SmoothedHistory(values, window), nil
}

// Performance returns summary statistics over the account's value history.
// Returns nil without error when the history is too short to summarize.
func (s *PortfolioService) Performance(ctx context.Context, accountID string) (*valuation.PerformanceSummary, error) {
	values, err := s.ValueHistory(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return valuation.Performance(values), nil
}
