// Package matching implements the swap-matching core: currency
// normalization, combinatorial bundle search, and suggestion aggregation.
//
// Everything in this package is pure computation over caller-supplied
// snapshots. No I/O, no shared state, no errors: degenerate input degrades
// to an empty result, never a panic. Concurrent calls are safe because
// nothing here mutates its inputs.
package matching

import (
	"sort"
	"strings"
)

// Item is the canonical inventory item shape the engine operates on.
// Boundary layers map whatever external record shape they hold into this
// type before it ever reaches the matching code.
type Item struct {
	ID        string  `json:"id"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Title     string  `json:"title,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
	Condition string  `json:"condition,omitempty"`
}

// RateMap maps a currency code to its exchange factor against an implicit
// anchor unit. Conversion is always relative, so the anchor itself never
// needs to be known: valueInBase = price * (rate[currency] / rate[base]).
// A currency absent from the map defaults to rate 1.
type RateMap map[string]float64

// Bundle is a combination of 1-3 inventory items whose combined base-currency
// value falls inside the search window. Immutable once computed.
type Bundle struct {
	ItemIDs   []string `json:"item_ids"` // canonically sorted
	TotalBase float64  `json:"total_base"`
	Score     float64  `json:"score"` // 1 = exact match on target
	Size      int      `json:"size"`
}

// Match is a single inventory item that falls inside a window around the
// target, annotated with its base value and distance from the target.
type Match struct {
	Item     Item    `json:"item"`
	Base     float64 `json:"base"`
	Distance float64 `json:"distance"`
}

// Suggestion is the output unit shown to the user: a single item or a
// bundle, with display data and totals converted into requested currencies.
type Suggestion struct {
	Items         []Item             `json:"items"`
	TotalBase     float64            `json:"total_base"`
	Score         float64            `json:"score"`
	DisplayTotals map[string]float64 `json:"display_totals,omitempty"`
}

// TargetPrice identifies what the suggestions should approximate.
type TargetPrice struct {
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// Signature returns the canonical identity of an item-id set: sorted and
// comma-joined. The same combination discovered through different paths
// (single-item lookup vs bundle enumeration) always produces the same
// signature, which is what deduplication keys on.
func Signature(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
