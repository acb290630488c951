package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/swapjoy/matchd/internal/events"
	"github.com/swapjoy/matchd/internal/reliability"
)

// backupTimeout bounds a whole backup cycle including the upload.
const backupTimeout = 10 * time.Minute

// BackupJob uploads database snapshots to object storage and rotates old
// archives.
type BackupJob struct {
	service *reliability.BackupService
	bus     *events.Bus
	log     zerolog.Logger
}

// NewBackupJob creates a backup job.
func NewBackupJob(service *reliability.BackupService, bus *events.Bus, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service: service,
		bus:     bus,
		log:     log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name.
func (j *BackupJob) Name() string {
	return "backup"
}

// Run creates and uploads one backup, then prunes old ones. Rotation
// failures are logged but do not fail the job, the new backup already
// landed.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	if err := j.service.CreateAndUploadBackup(ctx); err != nil {
		return err
	}

	if err := j.service.RotateOldBackups(ctx); err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}

	if j.bus != nil {
		j.bus.Publish(events.Event{Type: events.TypeBackupDone})
	}

	return nil
}
