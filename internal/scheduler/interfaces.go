package scheduler

import (
	"context"
	"time"
)

// RunStoreInterface defines the contract for run store cleanup operations
// Used by scheduler to enable testing with mocks
type RunStoreInterface interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ArchiverInterface defines the contract for archive sweep operations
// Used by scheduler to enable testing with mocks
type ArchiverInterface interface {
	SweepExpired(ctx context.Context, maxAge time.Duration) (int, error)
}

// DatabaseInterface defines the contract for database maintenance operations
// Used by scheduler to enable testing with mocks
type DatabaseInterface interface {
	WALCheckpoint(mode string) error
}
