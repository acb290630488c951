// Package rates manages exchange rate storage, syncing and analytics.
// Rates are stored relative to a single anchor currency so any pair can be
// derived by division.
package rates

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/swapjoy/matchd/internal/matching"
)

// Rate is one stored exchange rate relative to the anchor currency.
type Rate struct {
	Code     string  `json:"code"`
	Rate     float64 `json:"rate"`
	SyncedAt int64   `json:"synced_at"`
}

// HistoryPoint is one historical observation of a rate.
type HistoryPoint struct {
	Rate       float64 `json:"rate"`
	RecordedAt int64   `json:"recorded_at"`
}

// Repository handles exchange rate database operations against marketplace.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new rates repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "rates").Logger(),
	}
}

// Upsert stores the current rate for a currency and appends a history row.
func (r *Repository) Upsert(code string, rate float64) error {
	now := time.Now().Unix()

	_, err := r.db.Exec(
		"INSERT OR REPLACE INTO exchange_rates (code, rate, synced_at) VALUES (?, ?, ?)",
		code, rate, now)
	if err != nil {
		return fmt.Errorf("failed to upsert rate for %s: %w", code, err)
	}

	_, err = r.db.Exec(
		"INSERT INTO rate_history (code, rate, recorded_at) VALUES (?, ?, ?)",
		code, rate, now)
	if err != nil {
		return fmt.Errorf("failed to append rate history for %s: %w", code, err)
	}

	return nil
}

// GetRate returns the stored rate for a currency, or nil if never synced.
func (r *Repository) GetRate(code string) (*Rate, error) {
	var rate Rate
	err := r.db.QueryRow(
		"SELECT code, rate, synced_at FROM exchange_rates WHERE code = ?",
		code).Scan(&rate.Code, &rate.Rate, &rate.SyncedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rate for %s: %w", code, err)
	}

	return &rate, nil
}

// GetRateMap returns all stored rates as the matching engine's rate table.
func (r *Repository) GetRateMap() (matching.RateMap, error) {
	rows, err := r.db.Query("SELECT code, rate FROM exchange_rates")
	if err != nil {
		return nil, fmt.Errorf("failed to query rates: %w", err)
	}
	defer rows.Close()

	rates := make(matching.RateMap)
	for rows.Next() {
		var code string
		var rate float64
		if err := rows.Scan(&code, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan rate: %w", err)
		}
		rates[code] = rate
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rates: %w", err)
	}

	return rates, nil
}

// History returns up to limit historical points for a currency, oldest
// first so time series analysis can consume them directly.
func (r *Repository) History(code string, limit int) ([]HistoryPoint, error) {
	if limit <= 0 {
		limit = 100
	}

	// Newest N rows, then reversed into chronological order
	rows, err := r.db.Query(
		`SELECT rate, recorded_at FROM rate_history
		WHERE code = ? ORDER BY recorded_at DESC LIMIT ?`,
		code, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate history for %s: %w", code, err)
	}
	defer rows.Close()

	var points []HistoryPoint
	for rows.Next() {
		var p HistoryPoint
		if err := rows.Scan(&p.Rate, &p.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history for %s: %w", code, err)
	}

	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}

	return points, nil
}

// OldestSyncedAt returns the oldest synced_at across all stored rates,
// or zero when no rates are stored. Used for staleness warnings.
func (r *Repository) OldestSyncedAt() (int64, error) {
	var oldest sql.NullInt64
	err := r.db.QueryRow("SELECT MIN(synced_at) FROM exchange_rates").Scan(&oldest)
	if err != nil {
		return 0, fmt.Errorf("failed to query oldest sync time: %w", err)
	}
	if !oldest.Valid {
		return 0, nil
	}
	return oldest.Int64, nil
}

// NewestSyncedAt returns the newest synced_at across all stored rates, or
// zero when no rates are stored. Changes on every sync, which makes it a
// cheap version stamp for caches keyed on the rate table.
func (r *Repository) NewestSyncedAt() (int64, error) {
	var newest sql.NullInt64
	err := r.db.QueryRow("SELECT MAX(synced_at) FROM exchange_rates").Scan(&newest)
	if err != nil {
		return 0, fmt.Errorf("failed to query newest sync time: %w", err)
	}
	if !newest.Valid {
		return 0, nil
	}
	return newest.Int64, nil
}
