package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// TradeRepository handles trade database operations
type TradeRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db *sql.DB, log zerolog.Logger) *TradeRepository {
	return &TradeRepository{
		db:  db,
		log: log.With().Str("repo", "trade").Logger(),
	}
}

// InsertBatch inserts imported trade records for an account in one transaction
func (r *TradeRepository) InsertBatch(accountID string, trades []TradeRecord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO trades
		(account_id, ticker, trade_date, quantity, price, currency, activity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, t := range trades {
		_, err := stmt.Exec(
			accountID,
			strings.ToUpper(strings.TrimSpace(t.Ticker)),
			Day(t.Date).Format(DateOnly),
			t.Quantity,
			t.Price,
			strings.ToUpper(t.Currency),
			strings.ToUpper(t.Activity),
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert trade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trades: %w", err)
	}

	r.log.Info().
		Str("account_id", accountID).
		Int("count", len(trades)).
		Msg("Trades imported")

	return nil
}

// GetAll retrieves the full ledger for an account, oldest first
func (r *TradeRepository) GetAll(accountID string) ([]TradeRecord, error) {
	query := `
		SELECT id, ticker, trade_date, quantity, price, currency, activity
		FROM trades
		WHERE account_id = ?
		ORDER BY trade_date ASC, id ASC
	`

	rows, err := r.db.Query(query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trades: %w", err)
	}
	defer rows.Close()

	return r.scanTrades(rows)
}

// GetByTicker retrieves trades for a single ticker, oldest first
func (r *TradeRepository) GetByTicker(accountID, ticker string) ([]TradeRecord, error) {
	query := `
		SELECT id, ticker, trade_date, quantity, price, currency, activity
		FROM trades
		WHERE account_id = ? AND ticker = ?
		ORDER BY trade_date ASC, id ASC
	`

	rows, err := r.db.Query(query, accountID, strings.ToUpper(ticker))
	if err != nil {
		return nil, fmt.Errorf("failed to get trades by ticker: %w", err)
	}
	defer rows.Close()

	return r.scanTrades(rows)
}

// EarliestTradeDate returns the date of the first trade in the ledger,
// or nil when the ledger is empty
func (r *TradeRepository) EarliestTradeDate(accountID string) (*time.Time, error) {
	query := `SELECT MIN(trade_date) FROM trades WHERE account_id = ?`

	var earliest sql.NullString
	err := r.db.QueryRow(query, accountID).Scan(&earliest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get earliest trade date: %w", err)
	}

	if !earliest.Valid {
		return nil, nil
	}

	t, err := time.Parse(DateOnly, earliest.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse earliest trade date: %w", err)
	}

	return &t, nil
}

func (r *TradeRepository) scanTrades(rows *sql.Rows) ([]TradeRecord, error) {
	var trades []TradeRecord
	for rows.Next() {
		var t TradeRecord
		var date string

		if err := rows.Scan(&t.ID, &t.Ticker, &date, &t.Quantity, &t.Price, &t.Currency, &t.Activity); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		parsed, err := time.Parse(DateOnly, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse trade date %q: %w", date, err)
		}
		t.Date = parsed

		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}
