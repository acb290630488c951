package jobs

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapjoy/matchd/internal/clientdata"
	"github.com/swapjoy/matchd/internal/events"
	testhelpers "github.com/swapjoy/matchd/internal/testing"
)

func TestCacheCleanupJobPurgesExpired(t *testing.T) {
	cacheDB, cleanup := testhelpers.NewTestDB(t, "cache")
	defer cleanup()

	repo := clientdata.NewRepository(cacheDB.Conn())
	require.NoError(t, repo.Store("exchangerate", "USD", []byte("{}"), -time.Minute))
	require.NoError(t, repo.Store("bundle_pools", "fresh", []byte("{}"), time.Hour))

	bus := events.NewBus(zerolog.Nop())
	var cleaned []*events.Event
	bus.Subscribe(events.TypeCacheCleaned, func(e *events.Event) {
		cleaned = append(cleaned, e)
	})

	job := NewCacheCleanupJob(repo, cacheDB, bus, zerolog.Nop())
	assert.Equal(t, "cache_cleanup", job.Name())
	require.NoError(t, job.Run())

	// The expired entry is gone, the fresh one survives
	gone, err := repo.Get("exchangerate", "USD")
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := repo.GetIfFresh("bundle_pools", "fresh")
	require.NoError(t, err)
	assert.NotNil(t, kept)

	assert.Len(t, cleaned, 1)
}

func TestCacheCleanupJobNothingExpired(t *testing.T) {
	cacheDB, cleanup := testhelpers.NewTestDB(t, "cache")
	defer cleanup()

	repo := clientdata.NewRepository(cacheDB.Conn())
	bus := events.NewBus(zerolog.Nop())
	var cleaned []*events.Event
	bus.Subscribe(events.TypeCacheCleaned, func(e *events.Event) {
		cleaned = append(cleaned, e)
	})

	job := NewCacheCleanupJob(repo, cacheDB, bus, zerolog.Nop())
	require.NoError(t, job.Run())

	// No event when nothing was deleted
	assert.Empty(t, cleaned)
}
