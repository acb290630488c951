package inventory

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// itemColumns is the list of columns for the items table.
// Used to avoid SELECT * which can break when schema changes.
const itemColumns = `id, user_id, title, description, price, estimated_value,
currency, condition, image_url, status, created_at, updated_at`

// Repository handles item database operations against marketplace.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new item repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "inventory").Logger(),
	}
}

// Create inserts a new listing. An empty ID is filled with a fresh UUID,
// an empty status defaults to active.
func (r *Repository) Create(item *Item) error {
	if item == nil {
		return fmt.Errorf("item is nil")
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Status == "" {
		item.Status = StatusActive
	}

	now := time.Now().Unix()
	item.CreatedAt = now
	item.UpdatedAt = now

	query := `INSERT INTO items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		item.ID, item.UserID, item.Title, item.Description,
		item.Price, item.EstimatedValue, item.Currency, item.Condition,
		item.ImageURL, item.Status, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	return nil
}

// GetByID returns a listing by ID, or nil if not found.
func (r *Repository) GetByID(id string) (*Item, error) {
	query := "SELECT " + itemColumns + " FROM items WHERE id = ?"

	rows, err := r.db.Query(query, strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("failed to query item by id: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil // Item not found
	}

	item, err := scanItem(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}

	return item, nil
}

// Update rewrites the mutable fields of a listing.
func (r *Repository) Update(item *Item) error {
	if item == nil || item.ID == "" {
		return fmt.Errorf("item id is required")
	}

	item.UpdatedAt = time.Now().Unix()

	query := `UPDATE items SET
		title = ?, description = ?, price = ?, estimated_value = ?,
		currency = ?, condition = ?, image_url = ?, status = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.Exec(query,
		item.Title, item.Description, item.Price, item.EstimatedValue,
		item.Currency, item.Condition, item.ImageURL, item.Status,
		item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item not found: %s", item.ID)
	}

	return nil
}

// Delete removes a listing permanently.
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item not found: %s", id)
	}

	return nil
}

// ListActive returns every active listing, newest first.
func (r *Repository) ListActive() ([]*Item, error) {
	query := "SELECT " + itemColumns + ` FROM items
		WHERE status = ? ORDER BY created_at DESC`

	return r.queryItems(query, StatusActive)
}

// ListActiveExcludingUser returns active listings not owned by the given
// user. Anonymous listing views use this to show what the rest of the
// marketplace could put up against a listing.
func (r *Repository) ListActiveExcludingUser(userID string) ([]*Item, error) {
	query := "SELECT " + itemColumns + ` FROM items
		WHERE status = ? AND user_id != ? ORDER BY created_at DESC`

	return r.queryItems(query, StatusActive, userID)
}

// ListActiveByUser returns a user's active listings, newest first. This is
// the candidate pool for swap suggestions: what the user can offer.
func (r *Repository) ListActiveByUser(userID string) ([]*Item, error) {
	query := "SELECT " + itemColumns + ` FROM items
		WHERE status = ? AND user_id = ? ORDER BY created_at DESC`

	return r.queryItems(query, StatusActive, userID)
}

// ListByUser returns all listings owned by a user, newest first.
func (r *Repository) ListByUser(userID string) ([]*Item, error) {
	query := "SELECT " + itemColumns + ` FROM items
		WHERE user_id = ? ORDER BY created_at DESC`

	return r.queryItems(query, userID)
}

// CountActive returns the number of active listings.
func (r *Repository) CountActive() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM items WHERE status = ?", StatusActive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active items: %w", err)
	}
	return count, nil
}

func (r *Repository) queryItems(query string, args ...interface{}) ([]*Item, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

func scanItem(rows *sql.Rows) (*Item, error) {
	var item Item
	var description, condition, imageURL sql.NullString
	var price, estimatedValue sql.NullFloat64

	err := rows.Scan(
		&item.ID, &item.UserID, &item.Title, &description,
		&price, &estimatedValue, &item.Currency, &condition,
		&imageURL, &item.Status, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	item.Description = description.String
	item.Condition = condition.String
	item.ImageURL = imageURL.String
	if price.Valid {
		item.Price = price.Float64
	}
	if estimatedValue.Valid {
		v := estimatedValue.Float64
		item.EstimatedValue = &v
	}

	return &item, nil
}
