// Package inventory manages the marketplace item catalog: the listings users
// put up for swapping, stored in marketplace.db.
package inventory

import (
	"github.com/swapjoy/matchd/internal/matching"
)

// Item statuses. Only active items participate in matching.
const (
	StatusActive   = "active"
	StatusSwapped  = "swapped"
	StatusArchived = "archived"
)

// Item represents a marketplace listing.
type Item struct {
	ID             string   `json:"id"`
	UserID         string   `json:"user_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Price          float64  `json:"price"`
	EstimatedValue *float64 `json:"estimated_value,omitempty"`
	Currency       string   `json:"currency"`
	Condition      string   `json:"condition,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	Status         string   `json:"status"`
	CreatedAt      int64    `json:"created_at"`
	UpdatedAt      int64    `json:"updated_at"`
}

// EffectivePrice returns the value used for matching. The owner's asking
// price wins; the system's estimated value fills in when the owner left
// the price unset.
func (i *Item) EffectivePrice() float64 {
	if i.Price > 0 {
		return i.Price
	}
	if i.EstimatedValue != nil && *i.EstimatedValue > 0 {
		return *i.EstimatedValue
	}
	return 0
}

// ToMatchingItem converts a listing into the matching engine's item shape.
func (i *Item) ToMatchingItem() matching.Item {
	return matching.Item{
		ID:        i.ID,
		Price:     i.EffectivePrice(),
		Currency:  i.Currency,
		Title:     i.Title,
		ImageURL:  i.ImageURL,
		Condition: i.Condition,
	}
}

// ToMatchingItems converts a slice of listings for the matching engine.
func ToMatchingItems(items []*Item) []matching.Item {
	out := make([]matching.Item, 0, len(items))
	for _, it := range items {
		out = append(out, it.ToMatchingItem())
	}
	return out
}
