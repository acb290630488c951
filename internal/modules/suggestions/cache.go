package suggestions

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/swapjoy/matchd/internal/clientdata"
	"github.com/swapjoy/matchd/internal/matching"
)

// Cache memoizes computed suggestion lists in cache.db. Recomputing bundle
// search for every page load is the single most expensive thing this
// service does, and identical requests against an unchanged inventory are
// common. Entries use msgpack, suggestion lists are pure data and the
// binary encoding keeps the cache blobs small.
type Cache struct {
	repo *clientdata.Repository
	log  zerolog.Logger
}

// NewCache creates a new suggestion cache. repo may be nil, which disables
// caching entirely.
func NewCache(repo *clientdata.Repository, log zerolog.Logger) *Cache {
	return &Cache{
		repo: repo,
		log:  log.With().Str("component", "suggestion_cache").Logger(),
	}
}

// Key derives a stable cache key from the request, the inventory snapshot
// and the rate table version the result was computed against. Any item
// change or rate sync produces a different key, so stale pools age out
// rather than get served for changed inputs.
func Key(target matching.TargetPrice, opts matching.SuggestOptions, items []matching.Item, ratesVersion int64) string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = fmt.Sprintf("%s:%g:%s", it.ID, it.Price, it.Currency)
	}
	sort.Strings(ids)

	h := sha256.New()
	fmt.Fprintf(h, "%g|%s|%s|%g|%g|%d|%d|%d|",
		target.Price, target.Currency,
		opts.BaseCurrency, opts.SingleTolerance, opts.Accuracy,
		opts.Bundle.MaxItemsPerBundle, opts.Bundle.MaxResults,
		ratesVersion)
	h.Write([]byte(strings.Join(ids, ",")))

	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached suggestion list, or nil on miss. Cache failures are
// logged and treated as misses.
func (c *Cache) Get(key string) []matching.Suggestion {
	if c == nil || c.repo == nil {
		return nil
	}

	data, err := c.repo.GetIfFresh("bundle_pools", key)
	if err != nil {
		c.log.Warn().Err(err).Msg("Cache lookup failed")
		return nil
	}
	if data == nil {
		return nil
	}

	var suggestions []matching.Suggestion
	if err := msgpack.Unmarshal(data, &suggestions); err != nil {
		c.log.Warn().Err(err).Msg("Failed to decode cached suggestions")
		return nil
	}

	return suggestions
}

// Put stores a suggestion list. Failures are logged, never fatal.
func (c *Cache) Put(key string, suggestions []matching.Suggestion) {
	if c == nil || c.repo == nil {
		return
	}

	data, err := msgpack.Marshal(suggestions)
	if err != nil {
		c.log.Warn().Err(err).Msg("Failed to encode suggestions for cache")
		return
	}

	if err := c.repo.Store("bundle_pools", key, data, clientdata.TTLBundlePool); err != nil {
		c.log.Warn().Err(err).Msg("Failed to store suggestions in cache")
	}
}
