package matching

import (
	"math"
	"sort"
)

// BundleOptions bounds the combinatorial search.
type BundleOptions struct {
	MaxItemsPerBundle int // combination size cap, clamped to [1, 3]; 0 = default 3
	MaxResults        int // result cap, clamped to [1, 5]; 0 = default 5
}

const (
	defaultMaxItemsPerBundle = 3
	defaultMaxResults        = 5
)

func (o BundleOptions) maxSize() int {
	n := o.MaxItemsPerBundle
	if n == 0 {
		n = defaultMaxItemsPerBundle
	}
	if n < 1 {
		n = 1
	}
	if n > 3 {
		n = 3
	}
	return n
}

func (o BundleOptions) maxResults() int {
	n := o.MaxResults
	if n == 0 {
		n = defaultMaxResults
	}
	if n < 1 {
		n = 1
	}
	if n > 5 {
		n = 5
	}
	return n
}

// candidate pairs an item with its precomputed base-currency value.
type candidate struct {
	item Item
	base float64
}

// candidatePool normalizes every item to the base currency and drops items
// whose base value is non-finite or non-positive - they can never validly
// contribute to a bundle. The pool is sorted ascending by base value, which
// is what makes upper-bound pruning sound.
func candidatePool(items []Item, rates RateMap, base string) []candidate {
	pool := make([]candidate, 0, len(items))
	for _, it := range items {
		v := ToBase(it.Price, it.Currency, rates, base)
		if !isUsableValue(v) {
			continue
		}
		pool = append(pool, candidate{item: it, base: v})
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].base < pool[j].base })
	return pool
}

// FindBundles enumerates combinations of 1-3 items whose combined base value
// lands inside the accuracy window around targetBase, scores them by
// closeness, deduplicates by id-set signature, and returns the ranked,
// capped result.
//
// items are normalized to base via the rate map before searching. The
// enumeration visits each unordered combination exactly once (ascending
// index loops) and prunes a branch as soon as its partial sum exceeds the
// window's upper bound - the pool is sorted ascending, so every further
// extension of that branch can only be larger.
func FindBundles(targetBase float64, items []Item, rates RateMap, accuracy float64, base string, opts BundleOptions) []Bundle {
	if math.IsNaN(targetBase) || math.IsInf(targetBase, 0) || targetBase <= 0 {
		return nil
	}

	pool := candidatePool(items, rates, base)
	if len(pool) == 0 {
		return nil
	}

	lo, hi, tol := AccuracyWindow(targetBase, accuracy)
	maxSize := opts.maxSize()

	found := make(map[string]Bundle)
	record := func(sum float64, members ...candidate) {
		ids := make([]string, len(members))
		for i, m := range members {
			ids[i] = m.item.ID
		}
		sig := Signature(ids)
		if _, ok := found[sig]; ok {
			// Same item set already discovered (e.g. duplicated ids in the
			// input pool); the first, smaller discovery wins.
			return
		}
		sort.Strings(ids)
		found[sig] = Bundle{
			ItemIDs:   ids,
			TotalBase: sum,
			Score:     closenessScore(sum, targetBase, tol),
			Size:      len(members),
		}
	}

	n := len(pool)
	for i := 0; i < n; i++ {
		sum1 := pool[i].base
		if sum1 > hi {
			break
		}
		if sum1 >= lo {
			record(sum1, pool[i])
		}
		if maxSize < 2 {
			continue
		}
		for j := i + 1; j < n; j++ {
			sum2 := sum1 + pool[j].base
			if sum2 > hi {
				break
			}
			if sum2 >= lo {
				record(sum2, pool[i], pool[j])
			}
			if maxSize < 3 {
				continue
			}
			for k := j + 1; k < n; k++ {
				sum3 := sum2 + pool[k].base
				if sum3 > hi {
					break
				}
				if sum3 >= lo {
					record(sum3, pool[i], pool[j], pool[k])
				}
			}
		}
	}

	bundles := make([]Bundle, 0, len(found))
	for _, b := range found {
		bundles = append(bundles, b)
	}

	// Rank: best score first; at equal score prefer fewer items (a simpler
	// swap), then the smaller absolute distance from target.
	sort.SliceStable(bundles, func(a, b int) bool {
		if bundles[a].Score != bundles[b].Score {
			return bundles[a].Score > bundles[b].Score
		}
		if bundles[a].Size != bundles[b].Size {
			return bundles[a].Size < bundles[b].Size
		}
		da := math.Abs(bundles[a].TotalBase - targetBase)
		db := math.Abs(bundles[b].TotalBase - targetBase)
		if da != db {
			return da < db
		}
		// Final deterministic tie-break so identical inputs always produce
		// identical orderings.
		return Signature(bundles[a].ItemIDs) < Signature(bundles[b].ItemIDs)
	})

	if max := opts.maxResults(); len(bundles) > max {
		bundles = bundles[:max]
	}
	return bundles
}

// ItemsInWindow returns every item whose base value falls inside the
// multiplicative window around targetBase, sorted by absolute distance from
// the target ascending. This is the single-item lookup path; it uses the
// dual-semantics window of MultiplicativeWindow, not the accuracy window.
func ItemsInWindow(targetBase float64, items []Item, rates RateMap, multiplier float64, base string) []Match {
	if math.IsNaN(targetBase) || math.IsInf(targetBase, 0) || targetBase <= 0 {
		return nil
	}

	lo, hi := MultiplicativeWindow(targetBase, multiplier)

	var matches []Match
	for _, c := range candidatePool(items, rates, base) {
		if c.base < lo || c.base > hi {
			continue
		}
		matches = append(matches, Match{
			Item:     c.item,
			Base:     c.base,
			Distance: math.Abs(c.base - targetBase),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Item.ID < matches[j].Item.ID
	})

	return matches
}
