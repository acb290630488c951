package rates

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/swapjoy/matchd/internal/clients/exchangerate"
	"github.com/swapjoy/matchd/internal/events"
	"github.com/swapjoy/matchd/internal/matching"
)

// maxRateAge is how old stored rates may get before GetRateMap logs a
// staleness warning. Stale rates are still used, a wrong-ish price beats
// no suggestions at all.
const maxRateAge = 48 * time.Hour

// hardcodedRates is the last-resort rate table, relative to USD.
// Rough magnitudes only, used when the API and the database both fail.
var hardcodedRates = matching.RateMap{
	"USD": 1.0,
	"EUR": 1.11,
	"GBP": 1.27,
	"GEL": 0.37,
}

// Service provides exchange rates with a 3-tier fallback:
// 1. exchangerate-api.com (fresh or stale-cached in cache.db)
// 2. rates previously synced into marketplace.db
// 3. hardcoded fallback table
type Service struct {
	client     *exchangerate.Client
	repo       *Repository
	bus        *events.Bus
	anchor     string
	currencies []string
	log        zerolog.Logger
}

// NewService creates a new rate service. anchor is the currency every
// stored rate is expressed against, currencies is the set synced on
// schedule.
func NewService(client *exchangerate.Client, repo *Repository, bus *events.Bus, anchor string, currencies []string, log zerolog.Logger) *Service {
	return &Service{
		client:     client,
		repo:       repo,
		bus:        bus,
		anchor:     anchor,
		currencies: currencies,
		log:        log.With().Str("service", "rates").Logger(),
	}
}

// Anchor returns the anchor currency code.
func (s *Service) Anchor() string {
	return s.anchor
}

// LastSyncedAt returns the timestamp of the most recent stored rate, or
// zero when nothing has been synced. Moves forward on every sync, so
// consumers can use it as a rate table version.
func (s *Service) LastSyncedAt() int64 {
	if s.repo == nil {
		return 0
	}
	newest, err := s.repo.NewestSyncedAt()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read last sync time")
		return 0
	}
	return newest
}

// GetRateMap returns the current rate table, falling through the tiers.
// The anchor currency is always present with rate 1.
//
// The table's convention is "value of one unit of the currency expressed in
// the anchor" (EUR: 1.11 means one euro is worth 1.11 USD). The API reports
// the opposite direction, units of each currency per anchor, so tier 1
// inverts before returning.
func (s *Service) GetRateMap() matching.RateMap {
	// Tier 1: API (client handles its own fresh/stale caching)
	if s.client != nil {
		if rates, err := s.client.GetRates(s.anchor); err == nil && len(rates) > 0 {
			table := invertTable(rates)
			table[s.anchor] = 1.0
			return table
		} else if err != nil {
			s.log.Warn().Err(err).Msg("API rate fetch failed, trying database")
		}
	}

	// Tier 2: previously synced rates
	if s.repo != nil {
		table, err := s.repo.GetRateMap()
		if err == nil && len(table) > 0 {
			s.warnIfStale()
			table[s.anchor] = 1.0
			return table
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("Database rate lookup failed, using hardcoded rates")
		}
	}

	// Tier 3: hardcoded last resort
	s.log.Warn().Msg("Using hardcoded fallback rates")
	table := make(matching.RateMap, len(hardcodedRates))
	for code, rate := range hardcodedRates {
		table[code] = rate
	}
	table[s.anchor] = 1.0
	return table
}

// GetRate returns a single pair rate derived from the rate table.
func (s *Service) GetRate(fromCurrency, toCurrency string) (float64, error) {
	if fromCurrency == toCurrency {
		return 1.0, nil
	}

	table := s.GetRateMap()
	from, okFrom := table[fromCurrency]
	to, okTo := table[toCurrency]
	if !okFrom || !okTo || to <= 0 {
		return 0, fmt.Errorf("no rate available for %s/%s", fromCurrency, toCurrency)
	}

	// Both sides are anchor values, the pair rate is their ratio.
	return from / to, nil
}

// Convert converts an amount between two currencies.
func (s *Service) Convert(amount float64, fromCurrency, toCurrency string) (float64, error) {
	rate, err := s.GetRate(fromCurrency, toCurrency)
	if err != nil {
		return 0, err
	}
	return amount * rate, nil
}

// SyncRates fetches the configured currencies from the API and stores them
// in the database. Returns an error only if every currency fails, partial
// success is logged as warnings.
func (s *Service) SyncRates() error {
	if s.client == nil {
		return fmt.Errorf("no API client configured")
	}

	apiTable, err := s.client.GetRates(s.anchor)
	if err != nil {
		return fmt.Errorf("rate sync failed: %w", err)
	}
	table := invertTable(apiTable)

	successCount := 0
	errorCount := 0

	for _, code := range s.currencies {
		rate, ok := table[code]
		if code == s.anchor {
			rate, ok = 1.0, true
		}
		if !ok || rate <= 0 {
			s.log.Error().Str("code", code).Msg("Rate missing from API table")
			errorCount++
			continue
		}

		if err := s.repo.Upsert(code, rate); err != nil {
			s.log.Error().Err(err).Str("code", code).Msg("Failed to store rate")
			errorCount++
			continue
		}

		s.log.Debug().Str("code", code).Float64("rate", rate).Msg("Stored exchange rate")
		successCount++
	}

	s.log.Info().
		Int("success", successCount).
		Int("errors", errorCount).
		Msg("Exchange rate sync completed")

	if successCount == 0 {
		return fmt.Errorf("all rate fetches failed")
	}

	if s.bus != nil {
		s.bus.Publish(events.Event{
			Type:    events.TypeRatesSynced,
			Payload: map[string]int{"synced": successCount, "errors": errorCount},
		})
	}

	return nil
}

// invertTable flips an API table (currency units per anchor) into anchor
// value per currency unit. Non-positive entries are dropped.
func invertTable(apiRates map[string]float64) matching.RateMap {
	table := make(matching.RateMap, len(apiRates))
	for code, perAnchor := range apiRates {
		if perAnchor > 0 {
			table[code] = 1.0 / perAnchor
		}
	}
	return table
}

func (s *Service) warnIfStale() {
	oldest, err := s.repo.OldestSyncedAt()
	if err != nil || oldest == 0 {
		return
	}

	age := time.Since(time.Unix(oldest, 0))
	if age > maxRateAge {
		s.log.Warn().Dur("age", age).Msg("Stored rates are stale but using anyway")
	}
}
