// Package suggestions wires the matching engine to live marketplace data:
// it loads the candidate inventory, resolves the current rate table and
// serves ranked swap suggestions.
package suggestions

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/swapjoy/matchd/internal/matching"
	"github.com/swapjoy/matchd/internal/modules/inventory"
	"github.com/swapjoy/matchd/internal/modules/rates"
)

// Request describes one suggestion query.
type Request struct {
	TargetPrice    float64 `json:"target_price"`
	TargetCurrency string  `json:"target_currency"`
	// UserID selects whose inventory is searched: the suggestions answer
	// "which of this user's items or bundles are worth about the target
	// price". Empty searches the whole active marketplace.
	UserID string `json:"user_id,omitempty"`

	// Optional tuning, zero values take the engine defaults.
	SingleTolerance   float64 `json:"single_tolerance,omitempty"`
	Accuracy          float64 `json:"accuracy,omitempty"`
	MaxItemsPerBundle int     `json:"max_items_per_bundle,omitempty"`
	MaxResults        int     `json:"max_results,omitempty"`
}

// Service computes swap suggestions over a user's inventory.
type Service struct {
	invRepo           *inventory.Repository
	rateService       *rates.Service
	cache             *Cache
	displayCurrencies []string
	log               zerolog.Logger
}

// NewService creates a new suggestion service.
func NewService(invRepo *inventory.Repository, rateService *rates.Service, cache *Cache, displayCurrencies []string, log zerolog.Logger) *Service {
	return &Service{
		invRepo:           invRepo,
		rateService:       rateService,
		cache:             cache,
		displayCurrencies: displayCurrencies,
		log:               log.With().Str("service", "suggestions").Logger(),
	}
}

// Suggest returns ranked suggestions for a target price, drawn from the
// requesting user's own active listings (or the whole marketplace when no
// user is given). An empty result is a valid answer, not an error: errors
// are reserved for infrastructure failures like the inventory query.
func (s *Service) Suggest(req Request) ([]matching.Suggestion, error) {
	var candidates []*inventory.Item
	var err error
	if req.UserID != "" {
		candidates, err = s.invRepo.ListActiveByUser(req.UserID)
	} else {
		candidates, err = s.invRepo.ListActive()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	return s.suggest(req, candidates)
}

// SuggestForItem returns suggestions for what the requesting user could
// offer against an existing listing. The listing's effective price becomes
// the target and the requester's active inventory is the candidate pool;
// without a requester, the pool is everyone's items except the listing
// owner's. The listing itself never appears as its own counterpart.
// Returns nil, nil when the item does not exist.
func (s *Service) SuggestForItem(itemID string, req Request) ([]matching.Suggestion, error) {
	item, err := s.invRepo.GetByID(itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return nil, nil
	}

	req.TargetPrice = item.EffectivePrice()
	req.TargetCurrency = item.Currency

	var candidates []*inventory.Item
	if req.UserID != "" {
		candidates, err = s.invRepo.ListActiveByUser(req.UserID)
	} else {
		candidates, err = s.invRepo.ListActiveExcludingUser(item.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	filtered := make([]*inventory.Item, 0, len(candidates))
	for _, c := range candidates {
		if c.ID != item.ID {
			filtered = append(filtered, c)
		}
	}

	return s.suggest(req, filtered)
}

func (s *Service) suggest(req Request, candidates []*inventory.Item) ([]matching.Suggestion, error) {
	target := matching.TargetPrice{Price: req.TargetPrice, Currency: req.TargetCurrency}
	opts := matching.SuggestOptions{
		BaseCurrency:    s.rateService.Anchor(),
		SingleTolerance: req.SingleTolerance,
		Accuracy:        req.Accuracy,
		Bundle: matching.BundleOptions{
			MaxItemsPerBundle: req.MaxItemsPerBundle,
			MaxResults:        req.MaxResults,
		},
		DisplayCurrencies: s.displayCurrencies,
	}

	items := inventory.ToMatchingItems(candidates)

	key := Key(target, opts, items, s.rateService.LastSyncedAt())
	if cached := s.cache.Get(key); cached != nil {
		s.log.Debug().Str("key", key[:12]).Int("count", len(cached)).Msg("Serving cached suggestions")
		return cached, nil
	}

	result := matching.Suggest(target, items, s.rateService.GetRateMap(), opts)
	if result == nil {
		result = []matching.Suggestion{}
	}

	s.cache.Put(key, result)

	s.log.Info().
		Float64("target_price", req.TargetPrice).
		Str("target_currency", req.TargetCurrency).
		Int("candidates", len(items)).
		Int("suggestions", len(result)).
		Msg("Computed suggestions")

	return result, nil
}
