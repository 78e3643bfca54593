package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayside/portfolio-valuer/internal/clients/yahoo"
	"github.com/quayside/portfolio-valuer/internal/modules/ledger"
)

// stubFeed serves canned bars per symbol and records call counts
type stubFeed struct {
	bars  map[string][]yahoo.Bar
	calls int
}

func (f *stubFeed) Bars(_ context.Context, symbol string, _, _ time.Time) ([]yahoo.Bar, error) {
	f.calls++
	if bars, ok := f.bars[symbol]; ok {
		return bars, nil
	}
	return nil, errors.New("symbol not supported by feed")
}

func realBar(date string, close float64) yahoo.Bar {
	return yahoo.Bar{
		Date:   d(date),
		Open:   close - 1,
		High:   close + 1,
		Low:    close - 2,
		Close:  close,
		Volume: 1000,
	}
}

func TestFetchRealFeedWins(t *testing.T) {
	feed := &stubFeed{bars: map[string][]yahoo.Bar{
		"ABC": {realBar("2024-01-02", 50), realBar("2024-01-03", 51)},
	}}
	provider := NewProvider(feed, nil, zerolog.Nop())

	// Even with trades available for interpolation, a successful fetch
	// must never be replaced by synthetic data.
	trades := []ledger.TradeRecord{
		trade("ABC", "2024-01-02", 10, 49),
		trade("ABC", "2024-01-03", 10, 52),
	}

	series := provider.Fetch(context.Background(), "ABC", d("2024-01-02"), d("2024-01-03"), trades)

	assert.Equal(t, SourceReal, series.Source)
	require.Len(t, series.Points, 2)
	assert.Equal(t, 50.0, series.Points[0].Close)
	assert.False(t, series.Points[0].Synthetic())
}

func TestFetchFallsBackToSynthetic(t *testing.T) {
	provider := NewProvider(&stubFeed{}, nil, zerolog.Nop())

	trades := []ledger.TradeRecord{
		trade("XYZ", "2024-01-02", 100, 200),
		trade("XYZ", "2024-02-01", 50, 220),
	}

	series := provider.Fetch(context.Background(), "XYZ", d("2024-01-02"), d("2024-02-01"), trades)

	assert.Equal(t, SourceSynthetic, series.Source)
	require.NotEmpty(t, series.Points)
	assert.True(t, series.Points[0].Synthetic())
	assert.Equal(t, 200.0, series.Points[0].Close)
	assert.Equal(t, 220.0, series.Points[len(series.Points)-1].Close)
}

func TestFetchNormalizesPenceQuotes(t *testing.T) {
	feed := &stubFeed{bars: map[string][]yahoo.Bar{
		"ACME.L": {realBar("2024-01-02", 250)}, // 250p
	}}
	provider := NewProvider(feed, nil, zerolog.Nop())

	series := provider.Fetch(context.Background(), "ACME.L", d("2024-01-02"), d("2024-01-02"), nil)

	require.Len(t, series.Points, 1)
	assert.Equal(t, 2.5, series.Points[0].Close)
	assert.Equal(t, 2.51, *series.Points[0].High)
}

func TestFetchAllIsolatesFailures(t *testing.T) {
	feed := &stubFeed{bars: map[string][]yahoo.Bar{
		"GOOD": {realBar("2024-01-02", 50)},
	}}
	provider := NewProvider(feed, nil, zerolog.Nop())

	trades := []ledger.TradeRecord{
		trade("GOOD", "2024-01-02", 10, 49),
		trade("BAD", "2024-01-02", 10, 10),
		trade("BAD", "2024-01-10", 10, 12),
	}
	holdings := ledger.Summarize(trades)

	series := provider.FetchAll(context.Background(), holdings, trades)

	require.Len(t, series, 2)
	assert.Equal(t, SourceReal, series["GOOD"].Source)
	assert.Equal(t, SourceSynthetic, series["BAD"].Source)
	assert.NotEmpty(t, series["BAD"].Points)
}

func TestFetchUsesStoredHistoryBeforeSynthetic(t *testing.T) {
	store := NewHistoryStore(t.TempDir(), zerolog.Nop())

	// First session: feed works, bars get stored
	feed := &stubFeed{bars: map[string][]yahoo.Bar{
		"ABC": {realBar("2024-01-02", 50)},
	}}
	provider := NewProvider(feed, store, zerolog.Nop())
	first := provider.Fetch(context.Background(), "ABC", d("2024-01-01"), d("2024-01-05"), nil)
	require.Equal(t, SourceReal, first.Source)

	// Second session: feed is down, stored bars are served instead
	offline := NewProvider(&stubFeed{}, store, zerolog.Nop())
	second := offline.Fetch(context.Background(), "ABC", d("2024-01-01"), d("2024-01-05"), nil)

	assert.Equal(t, SourceReal, second.Source)
	require.Len(t, second.Points, 1)
	assert.Equal(t, 50.0, second.Points[0].Close)
	assert.False(t, second.Points[0].Synthetic())
}
