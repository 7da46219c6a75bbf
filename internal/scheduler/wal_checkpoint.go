package scheduler

import (
	"github.com/rs/zerolog"
)

// WALCheckpointJob truncates the SQLite write-ahead log so it cannot grow
// unbounded between restarts.
type WALCheckpointJob struct {
	db  DatabaseInterface
	log zerolog.Logger
}

// NewWALCheckpointJob creates a new WAL checkpoint job
func NewWALCheckpointJob(db DatabaseInterface, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		db:  db,
		log: log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run performs a TRUNCATE checkpoint
func (j *WALCheckpointJob) Run() error {
	if err := j.db.WALCheckpoint(""); err != nil {
		return err
	}
	j.log.Debug().Msg("WAL checkpoint completed")
	return nil
}
