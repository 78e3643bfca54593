package fx

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quayside/portfolio-valuer/internal/clients/yahoo"
)

// Currency pairs the valuation engine converts through
const (
	PairGBPUSD = "GBPUSD"
	PairGBPEUR = "GBPEUR"
)

// Feed supplies daily bars for FX pair symbols
type Feed interface {
	Bars(ctx context.Context, symbol string, start, end time.Time) ([]yahoo.Bar, error)
}

// Provider fetches GBP cross-rate series. Unlike equity prices there is no
// fallback here: converting currency without a rate is not safely
// approximable, so feed failures propagate to the caller. Fetched series are
// memoized for the provider's lifetime (one session).
type Provider struct {
	feed Feed
	log  zerolog.Logger

	mu    sync.Mutex
	cache map[string]*RateSeries
}

// NewProvider creates a new FX rate provider
func NewProvider(feed Feed, log zerolog.Logger) *Provider {
	return &Provider{
		feed:  feed,
		log:   log.With().Str("component", "fx_provider").Logger(),
		cache: make(map[string]*RateSeries),
	}
}

// Series fetches the daily close-rate series for a pair from start to today
func (p *Provider) Series(ctx context.Context, pair string, start time.Time) (*RateSeries, error) {
	key := pair + "|" + start.Format("2006-01-02")

	p.mu.Lock()
	cached, ok := p.cache[key]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	symbol := pair + "=X"
	bars, err := p.feed.Bars(ctx, symbol, start, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fx rates for %s: %w", pair, err)
	}

	dates := make([]time.Time, len(bars))
	rates := make([]float64, len(bars))
	for i, b := range bars {
		dates[i] = b.Date
		rates[i] = b.Close
	}

	series := NewRateSeries(pair, dates, rates)

	p.mu.Lock()
	p.cache[key] = series
	p.mu.Unlock()

	p.log.Debug().
		Str("pair", pair).
		Int("entries", series.Len()).
		Msg("FX series fetched")

	return series, nil
}
