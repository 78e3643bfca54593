package ledger

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayside/portfolio-valuer/internal/database"
)

func newTestRepo(t *testing.T) *TradeRepository {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "portfolio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate())

	return NewTradeRepository(db.Conn(), zerolog.Nop())
}

func TestTradeRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	trades := []TradeRecord{
		{Ticker: "acme.l", Date: d("2024-01-02"), Quantity: 100, Price: 200, Currency: "gbp", Activity: "trade"},
		{Ticker: "ABC", Date: d("2024-02-01"), Quantity: -40, Price: 55, Currency: "USD", Activity: ActivityTrade},
	}
	require.NoError(t, repo.InsertBatch("QX2B3", trades))

	got, err := repo.GetAll("QX2B3")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Tickers, currencies and activities are normalized to upper case on insert
	assert.Equal(t, "ACME.L", got[0].Ticker)
	assert.Equal(t, "GBP", got[0].Currency)
	assert.Equal(t, ActivityTrade, got[0].Activity)
	assert.Equal(t, d("2024-01-02"), got[0].Date)

	// Oldest first
	assert.True(t, got[0].Date.Before(got[1].Date))
}

func TestTradeRepositoryGetByTicker(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.InsertBatch("QX2B3", []TradeRecord{
		{Ticker: "ACME.L", Date: d("2024-01-02"), Quantity: 100, Price: 200, Currency: "GBP", Activity: ActivityTrade},
		{Ticker: "ABC", Date: d("2024-02-01"), Quantity: 10, Price: 50, Currency: "USD", Activity: ActivityTrade},
	}))

	got, err := repo.GetByTicker("QX2B3", "ACME.L")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ACME.L", got[0].Ticker)
}

func TestTradeRepositoryAccountIsolation(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.InsertBatch("A", []TradeRecord{
		{Ticker: "ACME.L", Date: d("2024-01-02"), Quantity: 100, Price: 200, Currency: "GBP", Activity: ActivityTrade},
	}))

	got, err := repo.GetAll("B")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTradeRepositoryEarliestTradeDate(t *testing.T) {
	repo := newTestRepo(t)

	earliest, err := repo.EarliestTradeDate("QX2B3")
	require.NoError(t, err)
	assert.Nil(t, earliest, "empty ledger has no earliest date")

	require.NoError(t, repo.InsertBatch("QX2B3", []TradeRecord{
		{Ticker: "ABC", Date: d("2024-03-01"), Quantity: 10, Price: 50, Currency: "USD", Activity: ActivityTrade},
		{Ticker: "ABC", Date: d("2024-01-15"), Quantity: 10, Price: 48, Currency: "USD", Activity: ActivityTrade},
	}))

	earliest, err = repo.EarliestTradeDate("QX2B3")
	require.NoError(t, err)
	require.NotNil(t, earliest)
	assert.Equal(t, d("2024-01-15"), *earliest)
}
