package marketdata

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog"

	"github.com/quayside/portfolio-valuer/internal/modules/ledger"
)

// HistoryStore persists real daily bars per ticker so later sessions can be
// served without hitting the feed. One SQLite file per symbol under historyDir.
type HistoryStore struct {
	historyDir string
	log        zerolog.Logger
}

// NewHistoryStore creates a new price history store
func NewHistoryStore(historyDir string, log zerolog.Logger) *HistoryStore {
	return &HistoryStore{
		historyDir: historyDir,
		log:        log.With().Str("component", "history_store").Logger(),
	}
}

// Save upserts real price points for a ticker. Synthetic points are refused:
// the store holds observed data only.
func (h *HistoryStore) Save(ticker string, points []PricePoint) error {
	for _, p := range points {
		if p.Synthetic() {
			return fmt.Errorf("refusing to store synthetic point for %s on %s",
				ticker, p.Date.Format(ledger.DateOnly))
		}
	}

	db, err := h.openHistoryDB(ticker, true)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO daily_prices
		(date, open_price, high_price, low_price, close_price, volume)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		_, err := stmt.Exec(
			p.Date.Format(ledger.DateOnly),
			*p.Open,
			*p.High,
			*p.Low,
			p.Close,
			p.Volume,
		)
		if err != nil {
			return fmt.Errorf("failed to insert history row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history for %s: %w", ticker, err)
	}

	h.log.Debug().
		Str("ticker", ticker).
		Int("points", len(points)).
		Msg("Price history saved")

	return nil
}

// Load fetches stored price points for a ticker within a date range inclusive
func (h *HistoryStore) Load(ticker string, start, end time.Time) ([]PricePoint, error) {
	db, err := h.openHistoryDB(ticker, false)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := `
		SELECT date, open_price, high_price, low_price, close_price, volume
		FROM daily_prices
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := db.Query(query, start.Format(ledger.DateOnly), end.Format(ledger.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", ticker, err)
	}
	defer rows.Close()

	var points []PricePoint
	for rows.Next() {
		var (
			p    PricePoint
			date string
			o, hi, lo float64
		)

		if err := rows.Scan(&date, &o, &hi, &lo, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		day, err := time.Parse(ledger.DateOnly, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse history date %q: %w", date, err)
		}

		p.Ticker = ticker
		p.Date = day
		p.Open, p.High, p.Low = &o, &hi, &lo
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}

	return points, nil
}

// openHistoryDB opens the per-symbol history database.
// Symbol format on disk: ABC.L -> ABC_L.db
func (h *HistoryStore) openHistoryDB(ticker string, create bool) (*sql.DB, error) {
	dbSymbol := strings.ReplaceAll(ticker, ".", "_")
	dbPath := filepath.Join(h.historyDir, dbSymbol+".db")

	if create {
		if err := os.MkdirAll(h.historyDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database for %s: %w", ticker, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database for %s: %w", ticker, err)
	}

	if create {
		_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS daily_prices (
				date TEXT PRIMARY KEY,
				open_price REAL,
				high_price REAL,
				low_price REAL,
				close_price REAL NOT NULL,
				volume INTEGER
			)
		`)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create history schema for %s: %w", ticker, err)
		}
	}

	return db, nil
}
