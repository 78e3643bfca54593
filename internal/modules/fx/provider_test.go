package fx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayside/portfolio-valuer/internal/clients/yahoo"
)

type stubFeed struct {
	bars  []yahoo.Bar
	err   error
	calls int
}

func (f *stubFeed) Bars(_ context.Context, _ string, _, _ time.Time) ([]yahoo.Bar, error) {
	f.calls++
	return f.bars, f.err
}

func TestSeriesPropagatesFeedFailure(t *testing.T) {
	feed := &stubFeed{err: errors.New("connection refused")}
	provider := NewProvider(feed, zerolog.Nop())

	_, err := provider.Series(context.Background(), PairGBPUSD, d("2024-01-01"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "GBPUSD")
}

func TestSeriesMemoizesPerSession(t *testing.T) {
	feed := &stubFeed{bars: []yahoo.Bar{
		{Date: d("2024-01-01"), Close: 1.25},
		{Date: d("2024-01-10"), Close: 1.27},
	}}
	provider := NewProvider(feed, zerolog.Nop())

	first, err := provider.Series(context.Background(), PairGBPUSD, d("2024-01-01"))
	require.NoError(t, err)

	second, err := provider.Series(context.Background(), PairGBPUSD, d("2024-01-01"))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, feed.calls, "second call must be served from the session cache")

	rate, err := second.AsOf(d("2024-01-05"))
	require.NoError(t, err)
	assert.Equal(t, 1.25, rate)
}
