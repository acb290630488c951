package matching

import "math"

// SuggestOptions configures suggestion aggregation.
//
// Numeric zero values mean "use the default", they are not literal
// settings. For the edge settings a zero would otherwise express:
// a SingleTolerance just above zero gives a near-exact single-item
// window, and any negative Accuracy clamps to the widest bundle window
// [0, 2*target], identical to what accuracy 0 yields in AccuracyWindow.
type SuggestOptions struct {
	BaseCurrency      string   // common unit prices are compared in; default "USD"
	SingleTolerance   float64  // multiplier for the single-item window; 0 = default 2.5
	Accuracy          float64  // accuracy for the bundle search; 0 = default 0.9, negative = widest window
	Bundle            BundleOptions
	DisplayCurrencies []string // currencies to convert each suggestion's total into
}

const (
	defaultBaseCurrency    = "USD"
	defaultSingleTolerance = 2.5
	defaultAccuracy        = 0.9
)

func (o SuggestOptions) withDefaults() SuggestOptions {
	if o.BaseCurrency == "" {
		o.BaseCurrency = defaultBaseCurrency
	}
	if o.SingleTolerance == 0 {
		o.SingleTolerance = defaultSingleTolerance
	}
	if o.Accuracy == 0 {
		o.Accuracy = defaultAccuracy
	}
	return o
}

// Suggest combines single-item matches and bundle matches against a target
// price into one deduplicated suggestion list.
//
// Single-item matches come first, sorted by distance from the target, then
// bundles in their own ranking. The two tiers are concatenated, never
// merged into a unified score ordering. Deduplication is by member-id-set
// signature with the first occurrence winning, so a singleton listed in
// the single-item tier suppresses the same singleton rediscovered by the
// bundle search.
func Suggest(target TargetPrice, inventory []Item, rates RateMap, opts SuggestOptions) []Suggestion {
	opts = opts.withDefaults()

	targetBase := ToBase(target.Price, target.Currency, rates, opts.BaseCurrency)
	if math.IsNaN(targetBase) || math.IsInf(targetBase, 0) || targetBase <= 0 {
		return nil
	}

	byID := make(map[string]Item, len(inventory))
	for _, it := range inventory {
		byID[it.ID] = it
	}

	seen := make(map[string]bool)
	var out []Suggestion

	for _, m := range ItemsInWindow(targetBase, inventory, rates, opts.SingleTolerance, opts.BaseCurrency) {
		sig := Signature([]string{m.Item.ID})
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, Suggestion{
			Items:         []Item{m.Item},
			TotalBase:     m.Base,
			Score:         singleScore(m.Base, targetBase),
			DisplayTotals: displayTotals(m.Base, rates, opts),
		})
	}

	for _, b := range FindBundles(targetBase, inventory, rates, opts.Accuracy, opts.BaseCurrency, opts.Bundle) {
		sig := Signature(b.ItemIDs)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		members := make([]Item, 0, len(b.ItemIDs))
		for _, id := range b.ItemIDs {
			if it, ok := byID[id]; ok {
				members = append(members, it)
			}
		}
		out = append(out, Suggestion{
			Items:         members,
			TotalBase:     b.TotalBase,
			Score:         b.Score,
			DisplayTotals: displayTotals(b.TotalBase, rates, opts),
		})
	}

	return out
}

// singleScore grades a single-item match by relative distance from the
// target, floored at 0. Single-item scores are not comparable to bundle
// scores: the tiers are never merged, so the two scales coexist.
func singleScore(base, targetBase float64) float64 {
	s := 1 - math.Abs(base-targetBase)/targetBase
	if s < 0 {
		s = 0
	}
	return s
}

func displayTotals(totalBase float64, rates RateMap, opts SuggestOptions) map[string]float64 {
	if len(opts.DisplayCurrencies) == 0 {
		return nil
	}
	totals := make(map[string]float64, len(opts.DisplayCurrencies))
	for _, cur := range opts.DisplayCurrencies {
		totals[cur] = FromBase(totalBase, cur, rates, opts.BaseCurrency)
	}
	return totals
}
