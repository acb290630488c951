package matching

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usdItems(prices ...float64) []Item {
	items := make([]Item, len(prices))
	for i, p := range prices {
		items[i] = Item{ID: fmt.Sprintf("item-%d", i), Price: p, Currency: "USD"}
	}
	return items
}

var usdOnly = RateMap{"USD": 1}

func TestFindBundlesExactTriple(t *testing.T) {
	// Window [270, 330]; the three 100s sum to exactly 300.
	items := usdItems(100, 100, 100, 50)
	bundles := FindBundles(300, items, usdOnly, 0.9, "USD", BundleOptions{})

	require.NotEmpty(t, bundles)
	best := bundles[0]
	assert.InDelta(t, 1.0, best.Score, 1e-9)
	assert.InDelta(t, 300.0, best.TotalBase, 1e-9)
	assert.Equal(t, 3, best.Size)

	// No combination that includes the 50-value item can reach the window:
	// 50+100+100 = 250 < 270 and smaller combos are further out.
	for _, b := range bundles {
		assert.NotContains(t, b.ItemIDs, "item-3")
	}
}

func TestFindBundlesWindowMembership(t *testing.T) {
	items := usdItems(10, 40, 55, 70, 90, 120, 160, 220)
	accuracy := 0.8
	target := 200.0
	lo, hi, _ := AccuracyWindow(target, accuracy)

	for _, b := range FindBundles(target, items, usdOnly, accuracy, "USD", BundleOptions{}) {
		assert.GreaterOrEqual(t, b.TotalBase, lo)
		assert.LessOrEqual(t, b.TotalBase, hi)
		assert.GreaterOrEqual(t, b.Score, 0.0)
		assert.LessOrEqual(t, b.Score, 1.0)
	}
}

func TestFindBundlesNoDuplicateSignatures(t *testing.T) {
	items := usdItems(50, 50, 100, 100, 150, 150, 200)
	bundles := FindBundles(300, items, usdOnly, 0.5, "USD", BundleOptions{MaxResults: 5})

	seen := make(map[string]bool)
	for _, b := range bundles {
		sig := Signature(b.ItemIDs)
		assert.False(t, seen[sig], "duplicate signature %s", sig)
		seen[sig] = true
	}
}

func TestFindBundlesIdempotent(t *testing.T) {
	items := usdItems(30, 60, 90, 120, 150, 180, 210)
	first := FindBundles(250, items, usdOnly, 0.7, "USD", BundleOptions{})
	second := FindBundles(250, items, usdOnly, 0.7, "USD", BundleOptions{})

	assert.Equal(t, first, second)
}

func TestFindBundlesRespectsCaps(t *testing.T) {
	// 20 items, all inside a wide window around 100
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 95 + float64(i)/4
	}
	items := usdItems(prices...)

	bundles := FindBundles(100, items, usdOnly, 0.5, "USD", BundleOptions{MaxItemsPerBundle: 1, MaxResults: 5})
	assert.Len(t, bundles, 5)
	for _, b := range bundles {
		assert.Equal(t, 1, b.Size)
	}

	// Out-of-range options clamp silently rather than fail
	bundles = FindBundles(100, items, usdOnly, 0.5, "USD", BundleOptions{MaxItemsPerBundle: 7, MaxResults: 50})
	assert.LessOrEqual(t, len(bundles), 5)
	for _, b := range bundles {
		assert.LessOrEqual(t, b.Size, 3)
	}
}

func TestFindBundlesSizeCapExcludesLargerCombos(t *testing.T) {
	items := usdItems(100, 100, 100)
	bundles := FindBundles(200, items, usdOnly, 0.9, "USD", BundleOptions{MaxItemsPerBundle: 2})

	require.NotEmpty(t, bundles)
	for _, b := range bundles {
		assert.LessOrEqual(t, b.Size, 2)
	}
}

func TestFindBundlesDegenerateInputs(t *testing.T) {
	items := usdItems(10, 20, 30)

	assert.Empty(t, FindBundles(0, items, usdOnly, 0.9, "USD", BundleOptions{}))
	assert.Empty(t, FindBundles(-5, items, usdOnly, 0.9, "USD", BundleOptions{}))
	assert.Empty(t, FindBundles(math.NaN(), items, usdOnly, 0.9, "USD", BundleOptions{}))
	assert.Empty(t, FindBundles(math.Inf(1), items, usdOnly, 0.9, "USD", BundleOptions{}))
	assert.Empty(t, FindBundles(100, nil, usdOnly, 0.9, "USD", BundleOptions{}))

	// Empty rate map degrades to identity conversion, not an error
	assert.NotEmpty(t, FindBundles(30, items, RateMap{}, 0.9, "USD", BundleOptions{}))
}

func TestFindBundlesExcludesUnusableItems(t *testing.T) {
	items := []Item{
		{ID: "ok", Price: 100, Currency: "USD"},
		{ID: "zero", Price: 0, Currency: "USD"},
		{ID: "negative", Price: -10, Currency: "USD"},
		{ID: "nan", Price: math.NaN(), Currency: "USD"},
	}

	bundles := FindBundles(100, items, usdOnly, 0.5, "USD", BundleOptions{})
	require.Len(t, bundles, 1)
	assert.Equal(t, []string{"ok"}, bundles[0].ItemIDs)
}

func TestFindBundlesPrefersSmallerAtEqualScore(t *testing.T) {
	// Both the single 100 and the pair 50+50 hit the target exactly.
	items := []Item{
		{ID: "whole", Price: 100, Currency: "USD"},
		{ID: "half-a", Price: 50, Currency: "USD"},
		{ID: "half-b", Price: 50, Currency: "USD"},
	}

	bundles := FindBundles(100, items, usdOnly, 0.9, "USD", BundleOptions{})
	require.GreaterOrEqual(t, len(bundles), 2)
	assert.Equal(t, []string{"whole"}, bundles[0].ItemIDs)
	assert.Equal(t, 2, bundles[1].Size)
}

func TestFindBundlesCrossCurrency(t *testing.T) {
	rates := RateMap{"EUR": 0.9, "USD": 1}

	// Target 50 EUR = 45 USD base; a 45 USD item is an exact match.
	targetBase := ToBase(50, "EUR", rates, "USD")
	assert.InDelta(t, 45.0, targetBase, 1e-9)

	items := []Item{{ID: "match", Price: 45, Currency: "USD"}}
	bundles := FindBundles(targetBase, items, rates, 0.9, "USD", BundleOptions{})
	require.Len(t, bundles, 1)
	assert.InDelta(t, 1.0, bundles[0].Score, 1e-9)
}

func TestItemsInWindowSortedByDistance(t *testing.T) {
	items := usdItems(100, 210, 45, 260, 120)
	matches := ItemsInWindow(100, items, usdOnly, 2.5, "USD")

	// Window is [40, 250]; item-3 (260) is out
	require.Len(t, matches, 4)
	assert.Equal(t, "item-0", matches[0].Item.ID)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i].Distance, matches[i-1].Distance)
	}
}

func TestItemsInWindowDegenerateTarget(t *testing.T) {
	items := usdItems(10, 20)
	assert.Empty(t, ItemsInWindow(0, items, usdOnly, 2.5, "USD"))
	assert.Empty(t, ItemsInWindow(math.NaN(), items, usdOnly, 2.5, "USD"))
}
