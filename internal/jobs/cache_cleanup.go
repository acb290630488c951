package jobs

import (
	"github.com/rs/zerolog"

	"github.com/swapjoy/matchd/internal/clientdata"
	"github.com/swapjoy/matchd/internal/database"
	"github.com/swapjoy/matchd/internal/events"
)

// CacheCleanupJob purges expired cache entries and checkpoints the cache
// database's WAL so it never grows unbounded.
type CacheCleanupJob struct {
	repo    *clientdata.Repository
	cacheDB *database.DB
	bus     *events.Bus
	log     zerolog.Logger
}

// NewCacheCleanupJob creates a cache cleanup job.
func NewCacheCleanupJob(repo *clientdata.Repository, cacheDB *database.DB, bus *events.Bus, log zerolog.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		repo:    repo,
		cacheDB: cacheDB,
		bus:     bus,
		log:     log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Name returns the job name.
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Run deletes expired entries from all cache tables.
func (j *CacheCleanupJob) Run() error {
	deleted, err := j.repo.DeleteAllExpired()
	if err != nil {
		return err
	}

	total := int64(0)
	for table, n := range deleted {
		if n > 0 {
			j.log.Debug().Str("table", table).Int64("deleted", n).Msg("Purged expired cache entries")
		}
		total += n
	}

	if j.cacheDB != nil {
		if err := j.cacheDB.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Msg("WAL checkpoint failed")
		}
	}

	j.log.Info().Int64("deleted", total).Msg("Cache cleanup completed")

	if j.bus != nil && total > 0 {
		j.bus.Publish(events.Event{
			Type:    events.TypeCacheCleaned,
			Payload: map[string]int64{"deleted": total},
		})
	}

	return nil
}
