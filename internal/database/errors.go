package database

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueEmpty is returned by Claim when no unlocked item remains.
	// It is a terminal condition of a run, not a failure.
	ErrQueueEmpty = errors.New("work queue is empty")

	// ErrPersistence wraps every error returned by a store write.
	ErrPersistence = errors.New("persistence failure")

	// ErrNotQueued is returned by a terminal write whose claimed queue key
	// no longer names an ingestion row.
	ErrNotQueued = errors.New("ingestion item not queued")

	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// persistenceError wraps err so that errors.Is(err, ErrPersistence) holds
// while the underlying driver error stays reachable.
func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
