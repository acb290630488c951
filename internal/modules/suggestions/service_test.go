package suggestions

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapjoy/matchd/internal/clientdata"
	"github.com/swapjoy/matchd/internal/matching"
	"github.com/swapjoy/matchd/internal/modules/inventory"
	"github.com/swapjoy/matchd/internal/modules/rates"
	testhelpers "github.com/swapjoy/matchd/internal/testing"
)

func newTestService(t *testing.T, withCache bool) (*Service, *inventory.Repository, func()) {
	t.Helper()

	marketDB, cleanupMarket := testhelpers.NewTestDB(t, "marketplace")
	invRepo := inventory.NewRepository(marketDB.Conn(), zerolog.Nop())

	rateRepo := rates.NewRepository(marketDB.Conn(), zerolog.Nop())
	require.NoError(t, rateRepo.Upsert("USD", 1.0))
	require.NoError(t, rateRepo.Upsert("EUR", 1.25))
	rateService := rates.NewService(nil, rateRepo, nil, "USD", nil, zerolog.Nop())

	var cache *Cache
	cleanupCache := func() {}
	if withCache {
		cacheDB, c := testhelpers.NewTestDB(t, "cache")
		cleanupCache = c
		cache = NewCache(clientdata.NewRepository(cacheDB.Conn()), zerolog.Nop())
	}

	svc := NewService(invRepo, rateService, cache, []string{"USD", "EUR"}, zerolog.Nop())
	return svc, invRepo, func() {
		cleanupCache()
		cleanupMarket()
	}
}

func TestServiceSuggestFindsMatches(t *testing.T) {
	svc, invRepo, cleanup := newTestService(t, false)
	defer cleanup()

	require.NoError(t, invRepo.Create(&inventory.Item{UserID: "alice", Title: "Bike", Price: 100, Currency: "USD"}))
	require.NoError(t, invRepo.Create(&inventory.Item{UserID: "alice", Title: "Skis", Price: 95, Currency: "USD"}))

	got, err := svc.Suggest(Request{TargetPrice: 100, TargetCurrency: "USD", UserID: "alice"})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "Bike", got[0].Items[0].Title)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)

	// Display totals carry both configured currencies
	require.NotNil(t, got[0].DisplayTotals)
	assert.Contains(t, got[0].DisplayTotals, "USD")
	assert.Contains(t, got[0].DisplayTotals, "EUR")
}

func TestServiceSuggestSearchesOwnInventoryOnly(t *testing.T) {
	svc, invRepo, cleanup := newTestService(t, false)
	defer cleanup()

	// Both users own an exact-price item; the suggestion answers "what can
	// this user offer", so only the requester's own listing comes back.
	require.NoError(t, invRepo.Create(&inventory.Item{UserID: "alice", Title: "Own bike", Price: 100, Currency: "USD"}))
	require.NoError(t, invRepo.Create(&inventory.Item{UserID: "bob", Title: "Bob's bike", Price: 100, Currency: "USD"}))

	got, err := svc.Suggest(Request{TargetPrice: 100, TargetCurrency: "USD", UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Own bike", got[0].Items[0].Title)
}

func TestServiceSuggestMarketplaceWide(t *testing.T) {
	svc, invRepo, cleanup := newTestService(t, false)
	defer cleanup()

	require.NoError(t, testhelpers.SeedItems(invRepo, testhelpers.NewItemFixtures()))

	// No user: the whole active marketplace is searched. The fixtures hold
	// an exact three-item combination for a 300 USD target.
	got, err := svc.Suggest(Request{TargetPrice: 300, TargetCurrency: "USD"})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	foundExactTriple := false
	for _, s := range got {
		if len(s.Items) == 3 && s.TotalBase == 300.0 {
			foundExactTriple = true
		}
		for _, it := range s.Items {
			assert.NotEqual(t, "fixture-swapped", it.ID)
		}
	}
	assert.True(t, foundExactTriple)
}

func TestServiceSuggestEmptyInventory(t *testing.T) {
	svc, _, cleanup := newTestService(t, false)
	defer cleanup()

	got, err := svc.Suggest(Request{TargetPrice: 100, TargetCurrency: "USD"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestServiceSuggestUsesEstimatedValueFallback(t *testing.T) {
	svc, invRepo, cleanup := newTestService(t, false)
	defer cleanup()

	estimate := 100.0
	require.NoError(t, invRepo.Create(&inventory.Item{
		UserID: "bob", Title: "Unpriced lamp", EstimatedValue: &estimate, Currency: "USD",
	}))

	got, err := svc.Suggest(Request{TargetPrice: 100, TargetCurrency: "USD"})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.InDelta(t, 100.0, got[0].TotalBase, 1e-9)
}

func TestServiceSuggestCachesResults(t *testing.T) {
	svc, invRepo, cleanup := newTestService(t, true)
	defer cleanup()

	require.NoError(t, invRepo.Create(&inventory.Item{UserID: "bob", Title: "Bike", Price: 100, Currency: "USD"}))

	req := Request{TargetPrice: 100, TargetCurrency: "USD"}
	first, err := svc.Suggest(req)
	require.NoError(t, err)

	second, err := svc.Suggest(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestServiceSuggestForItem(t *testing.T) {
	svc, invRepo, cleanup := newTestService(t, false)
	defer cleanup()

	// Bob lists a tripod; alice asks what she could offer for it. The
	// pool is alice's inventory, priced against the listing.
	listing := &inventory.Item{UserID: "bob", Title: "Tripod kit", Price: 160, Currency: "USD"}
	require.NoError(t, invRepo.Create(listing))
	require.NoError(t, invRepo.Create(&inventory.Item{UserID: "alice", Title: "My camera", Price: 80, Currency: "USD"}))
	require.NoError(t, invRepo.Create(&inventory.Item{UserID: "alice", Title: "My other camera", Price: 80, Currency: "USD"}))
	require.NoError(t, invRepo.Create(&inventory.Item{UserID: "carol", Title: "Drone", Price: 160, Currency: "USD"}))

	got, err := svc.SuggestForItem(listing.ID, Request{UserID: "alice"})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for _, s := range got {
		for _, it := range s.Items {
			assert.NotEqual(t, "Tripod kit", it.Title)
			assert.NotEqual(t, "Drone", it.Title)
		}
	}

	// The exact pair of cameras is in there
	found := false
	for _, s := range got {
		if len(s.Items) == 2 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestServiceSuggestForItemWithoutRequester(t *testing.T) {
	svc, invRepo, cleanup := newTestService(t, false)
	defer cleanup()

	// No requester: the pool is the rest of the marketplace, never the
	// listing owner's own items.
	listing := &inventory.Item{UserID: "alice", Title: "My camera", Price: 80, Currency: "USD"}
	require.NoError(t, invRepo.Create(listing))
	require.NoError(t, invRepo.Create(&inventory.Item{UserID: "alice", Title: "My other camera", Price: 80, Currency: "USD"}))
	require.NoError(t, invRepo.Create(&inventory.Item{UserID: "bob", Title: "Tripod kit", Price: 80, Currency: "USD"}))

	got, err := svc.SuggestForItem(listing.ID, Request{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Tripod kit", got[0].Items[0].Title)
}

func TestServiceSuggestForItemExcludesTheListingItself(t *testing.T) {
	svc, invRepo, cleanup := newTestService(t, false)
	defer cleanup()

	// Alice prices her own listing: her other items may match, the listing
	// must never be offered against itself.
	listing := &inventory.Item{UserID: "alice", Title: "Lamp", Price: 50, Currency: "USD"}
	require.NoError(t, invRepo.Create(listing))
	require.NoError(t, invRepo.Create(&inventory.Item{UserID: "alice", Title: "Stool", Price: 50, Currency: "USD"}))

	got, err := svc.SuggestForItem(listing.ID, Request{UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Stool", got[0].Items[0].Title)
}

func TestServiceSuggestForItemMissing(t *testing.T) {
	svc, _, cleanup := newTestService(t, false)
	defer cleanup()

	got, err := svc.SuggestForItem("no-such-item", Request{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheKeyChangesWithInventory(t *testing.T) {
	target := matching.TargetPrice{Price: 100, Currency: "USD"}
	opts := matching.SuggestOptions{BaseCurrency: "USD"}

	a := []matching.Item{{ID: "1", Price: 50, Currency: "USD"}}
	b := []matching.Item{{ID: "1", Price: 55, Currency: "USD"}}

	assert.NotEqual(t, Key(target, opts, a, 0), Key(target, opts, b, 0))
	assert.Equal(t, Key(target, opts, a, 0), Key(target, opts, a, 0))
}

func TestCacheKeyChangesWithRatesVersion(t *testing.T) {
	target := matching.TargetPrice{Price: 100, Currency: "USD"}
	opts := matching.SuggestOptions{BaseCurrency: "USD"}
	items := []matching.Item{{ID: "1", Price: 50, Currency: "EUR"}}

	// A rate sync bumps the version, so results computed under old rates
	// stop being served
	assert.NotEqual(t, Key(target, opts, items, 1700000000), Key(target, opts, items, 1700003600))
}

func TestCacheRoundTrip(t *testing.T) {
	cacheDB, cleanup := testhelpers.NewTestDB(t, "cache")
	defer cleanup()

	cache := NewCache(clientdata.NewRepository(cacheDB.Conn()), zerolog.Nop())

	suggestions := []matching.Suggestion{{
		Items:         []matching.Item{{ID: "a", Price: 10, Currency: "USD"}},
		TotalBase:     10,
		Score:         1,
		DisplayTotals: map[string]float64{"USD": 10},
	}}

	cache.Put("k1", suggestions)
	got := cache.Get("k1")
	assert.Equal(t, suggestions, got)

	assert.Nil(t, cache.Get("missing"))

	var disabled *Cache
	assert.Nil(t, disabled.Get("k1"))
	disabled.Put("k1", suggestions) // Must not panic
}
