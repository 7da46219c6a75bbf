package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSweepAge is how old an unarchived run must be before the sweep
// uploads it.
const DefaultSweepAge = 24 * time.Hour

// ArchiveSweepJob uploads unarchived run payloads so retention cleanup
// never deletes data that was meant to reach the bucket. Only registered
// when archiving is configured.
type ArchiveSweepJob struct {
	archiver ArchiverInterface
	maxAge   time.Duration
	log      zerolog.Logger
}

// NewArchiveSweepJob creates a new archive sweep job. A non-positive
// maxAge selects DefaultSweepAge.
func NewArchiveSweepJob(archiver ArchiverInterface, maxAge time.Duration, log zerolog.Logger) *ArchiveSweepJob {
	if maxAge <= 0 {
		maxAge = DefaultSweepAge
	}
	return &ArchiveSweepJob{
		archiver: archiver,
		maxAge:   maxAge,
		log:      log.With().Str("job", "archive_sweep").Logger(),
	}
}

// Name returns the job name
func (j *ArchiveSweepJob) Name() string {
	return "archive_sweep"
}

// Run archives pending runs
func (j *ArchiveSweepJob) Run() error {
	archived, err := j.archiver.SweepExpired(context.Background(), j.maxAge)
	if archived > 0 {
		j.log.Info().Int("archived", archived).Msg("Pending runs archived")
	}
	return err
}
