// Package jobs contains the scheduled background jobs: rate syncing, cache
// cleanup and database backups.
package jobs

import (
	"github.com/rs/zerolog"

	"github.com/swapjoy/matchd/internal/modules/rates"
)

// RateSyncJob refreshes exchange rates on schedule.
type RateSyncJob struct {
	service *rates.Service
	log     zerolog.Logger
}

// NewRateSyncJob creates a rate sync job.
func NewRateSyncJob(service *rates.Service, log zerolog.Logger) *RateSyncJob {
	return &RateSyncJob{
		service: service,
		log:     log.With().Str("job", "rate_sync").Logger(),
	}
}

// Name returns the job name.
func (j *RateSyncJob) Name() string {
	return "rate_sync"
}

// Run performs one sync cycle.
func (j *RateSyncJob) Run() error {
	return j.service.SyncRates()
}
