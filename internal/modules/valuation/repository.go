package valuation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository persists per-account valuation history. Implementations are
// append-only: saving never overwrites or deletes an existing (account, date)
// entry, so cached values stay ground truth once written.
type Repository interface {
	Load(accountID string) (map[string]float64, error)
	Save(accountID string, values map[string]float64) error
}

// SQLiteRepository stores valuations in the portfolio_values table
type SQLiteRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLiteRepository creates a new valuation repository
func NewSQLiteRepository(db *sql.DB, log zerolog.Logger) *SQLiteRepository {
	return &SQLiteRepository{
		db:  db,
		log: log.With().Str("repo", "valuation").Logger(),
	}
}

// Load reads the full date->value mapping for an account
func (r *SQLiteRepository) Load(accountID string) (map[string]float64, error) {
	rows, err := r.db.Query(
		`SELECT date, value_gbp FROM portfolio_values WHERE account_id = ?`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load valuations: %w", err)
	}
	defer rows.Close()

	values := make(map[string]float64)
	for rows.Next() {
		var date string
		var value float64
		if err := rows.Scan(&date, &value); err != nil {
			return nil, fmt.Errorf("failed to scan valuation: %w", err)
		}
		values[date] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating valuations: %w", err)
	}

	return values, nil
}

// Save persists the mapping for an account. INSERT OR IGNORE keeps existing
// entries untouched: the cache only ever grows.
func (r *SQLiteRepository) Save(accountID string, values map[string]float64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin valuation transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO portfolio_values (account_id, date, value_gbp, created_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare valuation insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for date, value := range values {
		if _, err := stmt.Exec(accountID, date, value, now); err != nil {
			return fmt.Errorf("failed to insert valuation for %s: %w", date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit valuations: %w", err)
	}

	return nil
}
