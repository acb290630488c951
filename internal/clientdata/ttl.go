package clientdata

import "time"

// TTL constants for cached data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// TTLExchangeRate bounds how long a fetched rate table counts as fresh.
	TTLExchangeRate = time.Hour

	// TTLBundlePool bounds how long a precomputed bundle pool for one
	// inventory snapshot is reused before being recomputed. Short on
	// purpose: inventories change while users browse.
	TTLBundlePool = 10 * time.Minute
)
