package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RetentionJob deletes stored runs older than the configured retention
// window. The archive sweep runs on a tighter schedule, so payloads have
// normally been uploaded before this job reaps them.
type RetentionJob struct {
	store     RunStoreInterface
	retention time.Duration
	log       zerolog.Logger
}

// NewRetentionJob creates a new run retention job
func NewRetentionJob(store RunStoreInterface, retention time.Duration, log zerolog.Logger) *RetentionJob {
	return &RetentionJob{
		store:     store,
		retention: retention,
		log:       log.With().Str("job", "run_retention").Logger(),
	}
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return "run_retention"
}

// Run deletes expired runs
func (j *RetentionJob) Run() error {
	cutoff := time.Now().Add(-j.retention)

	deleted, err := j.store.DeleteOlderThan(context.Background(), cutoff)
	if err != nil {
		return err
	}

	if deleted > 0 {
		j.log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Expired runs removed")
	}
	return nil
}
