package valuation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quayside/portfolio-valuer/internal/modules/fx"
	"github.com/quayside/portfolio-valuer/internal/modules/ledger"
	"github.com/quayside/portfolio-valuer/internal/modules/marketdata"
)

// Valuer computes a portfolio value for a single date
type Valuer interface {
	ValueOnDate(target time.Time, trades []ledger.TradeRecord, prices map[string]marketdata.Series, rates map[string]*fx.RateSeries) (float64, error)
}

// Service maintains the per-account valuation history, computing only the
// dates the cache does not already hold.
type Service struct {
	engine Valuer
	repo   Repository
	log    zerolog.Logger
}

// NewService creates a new valuation history service
func NewService(engine Valuer, repo Repository, log zerolog.Logger) *Service {
	return &Service{
		engine: engine,
		repo:   repo,
		log:    log.With().Str("service", "valuation").Logger(),
	}
}

// ValueHistory returns the full date->GBP-value history for an account,
// computing and persisting any candidate dates missing from the cache.
//
// A failed date is logged and skipped; the remaining dates still get
// computed and saved, so a transient FX outage never wipes out a batch.
func (s *Service) ValueHistory(
	accountID string,
	trades []ledger.TradeRecord,
	prices map[string]marketdata.Series,
	rates map[string]*fx.RateSeries,
) (map[string]float64, error) {
	cached, err := s.repo.Load(accountID)
	if err != nil {
		// A broken cache means recomputing, not failing the request.
		s.log.Warn().Err(err).
			Str("account_id", accountID).
			Msg("Failed to load valuation cache, starting fresh")
		cached = make(map[string]float64)
	}

	candidates := TradingDays(prices)
	computed := 0
	failed := 0

	for _, day := range candidates {
		key := day.Format(ledger.DateOnly)
		if _, ok := cached[key]; ok {
			continue
		}

		value, err := s.engine.ValueOnDate(day, trades, prices, rates)
		if err != nil {
			s.log.Error().Err(err).
				Str("date", key).
				Msg("Failed to value portfolio, skipping date")
			failed++
			continue
		}

		cached[key] = value
		computed++
	}

	if computed > 0 {
		if err := s.repo.Save(accountID, cached); err != nil {
			return cached, fmt.Errorf("failed to persist valuations for %s: %w", accountID, err)
		}
	}

	s.log.Info().
		Str("account_id", accountID).
		Int("candidates", len(candidates)).
		Int("computed", computed).
		Int("failed", failed).
		Int("total", len(cached)).
		Msg("Valuation history ready")

	return cached, nil
}

// TradingDays derives the valuation calendar from the price data itself:
// every date on which at least one domestically listed ticker (no exchange
// suffix in the symbol) has a real, non-synthetic price point. Synthetic
// series carry no High and so never open the market on their own.
func TradingDays(prices map[string]marketdata.Series) []time.Time {
	seen := make(map[time.Time]bool)
	for ticker, series := range prices {
		if strings.Contains(ticker, ".") {
			continue
		}
		for _, p := range series.Points {
			if p.High == nil {
				continue
			}
			seen[ledger.Day(p.Date)] = true
		}
	}

	days := make([]time.Time, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	return days
}
