// Package exchangerate provides currency exchange rate fetching and caching
// functionality against exchangerate-api.com.
package exchangerate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/swapjoy/matchd/internal/clientdata"
)

// Client for exchangerate-api.com
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new exchangerate-api.com client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   "https://api.exchangerate-api.com/v4/latest",
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log.With().Str("client", "exchangerate-api").Logger(),
		cacheRepo: cacheRepo,
	}
}

// SetBaseURL overrides the API endpoint (tests).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// cachedRateTable is the structure stored in the cache.
type cachedRateTable struct {
	Rates map[string]float64 `json:"rates"`
}

// GetRates fetches the full rate table for an anchor currency, with cache.
// Every rate in the table is expressed against the anchor, which is exactly
// the shape the matching engine's relative conversion expects. If the API
// fails, returns stale cached data if available (stale data > no data).
func (c *Client) GetRates(anchor string) (map[string]float64, error) {
	// Check persistent cache for fresh data
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("exchangerate", anchor)
		if err == nil && data != nil {
			var cached cachedRateTable
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().
					Str("anchor", anchor).
					Int("rates", len(cached.Rates)).
					Msg("Cache hit")
				return cached.Rates, nil
			}
		}
	}

	// Fetch from API
	url := fmt.Sprintf("%s/%s", c.baseURL, anchor)
	c.log.Debug().Str("url", url).Msg("Fetching rates")

	resp, err := c.client.Get(url)
	if err != nil {
		if stale, ok := c.getStaleFromCache(anchor); ok {
			c.log.Warn().
				Err(err).
				Str("anchor", anchor).
				Msg("API failed, using stale cached rates")
			return stale, nil
		}
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.getStaleFromCache(anchor); ok {
			c.log.Warn().
				Int("status", resp.StatusCode).
				Str("anchor", anchor).
				Msg("API error, using stale cached rates")
			return stale, nil
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if stale, ok := c.getStaleFromCache(anchor); ok {
			c.log.Warn().
				Err(err).
				Str("anchor", anchor).
				Msg("Failed to parse API response, using stale cached rates")
			return stale, nil
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Rates) == 0 {
		if stale, ok := c.getStaleFromCache(anchor); ok {
			c.log.Warn().
				Str("anchor", anchor).
				Msg("Empty rate table in API response, using stale cached rates")
			return stale, nil
		}
		return nil, fmt.Errorf("empty rate table for anchor %s", anchor)
	}

	// Cache persistently
	if c.cacheRepo != nil {
		payload, err := json.Marshal(cachedRateTable{Rates: result.Rates})
		if err == nil {
			if err := c.cacheRepo.Store("exchangerate", anchor, payload, clientdata.TTLExchangeRate); err != nil {
				c.log.Warn().Err(err).Str("anchor", anchor).Msg("Failed to cache rate table")
			}
		}
	}

	c.log.Info().
		Str("anchor", anchor).
		Int("rates", len(result.Rates)).
		Msg("Fetched rate table")

	return result.Rates, nil
}

// GetRate fetches a single pair rate out of the anchor table.
func (c *Client) GetRate(fromCurrency, toCurrency string) (float64, error) {
	if fromCurrency == toCurrency {
		return 1.0, nil
	}

	rates, err := c.GetRates(fromCurrency)
	if err != nil {
		return 0, err
	}

	rate, exists := rates[toCurrency]
	if !exists {
		return 0, fmt.Errorf("rate not found for %s->%s", fromCurrency, toCurrency)
	}

	return rate, nil
}

// getStaleFromCache retrieves a cached rate table even if expired.
// Used as a fallback when API calls fail.
func (c *Client) getStaleFromCache(anchor string) (map[string]float64, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	data, err := c.cacheRepo.Get("exchangerate", anchor)
	if err != nil || data == nil {
		return nil, false
	}

	var cached cachedRateTable
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}

	return cached.Rates, true
}
