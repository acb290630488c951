package testing

import (
	"github.com/swapjoy/matchd/internal/modules/inventory"
)

// NewItemFixtures returns a set of marketplace listings for use in tests.
// Prices are chosen so a 300 USD target has an exact three-item combination
// (bike + amp + table) and a near single match (camera).
func NewItemFixtures() []*inventory.Item {
	camera := 310.0
	return []*inventory.Item{
		{
			ID:       "fixture-bike",
			UserID:   "user-maria",
			Title:    "City bike",
			Price:    100,
			Currency: "USD",
			Status:   inventory.StatusActive,
		},
		{
			ID:       "fixture-amp",
			UserID:   "user-maria",
			Title:    "Guitar amplifier",
			Price:    100,
			Currency: "USD",
			Status:   inventory.StatusActive,
		},
		{
			ID:       "fixture-table",
			UserID:   "user-dato",
			Title:    "Coffee table",
			Price:    100,
			Currency: "USD",
			Status:   inventory.StatusActive,
		},
		{
			ID:             "fixture-camera",
			UserID:         "user-dato",
			Title:          "Film camera",
			EstimatedValue: &camera,
			Currency:       "USD",
			Status:         inventory.StatusActive,
		},
		{
			ID:       "fixture-eur-skis",
			UserID:   "user-nino",
			Title:    "Cross-country skis",
			Price:    90,
			Currency: "EUR",
			Status:   inventory.StatusActive,
		},
		{
			ID:       "fixture-swapped",
			UserID:   "user-nino",
			Title:    "Already swapped lamp",
			Price:    40,
			Currency: "USD",
			Status:   inventory.StatusSwapped,
		},
	}
}

// SeedItems inserts fixtures through the repository.
func SeedItems(repo *inventory.Repository, items []*inventory.Item) error {
	for _, item := range items {
		if err := repo.Create(item); err != nil {
			return err
		}
	}
	return nil
}
