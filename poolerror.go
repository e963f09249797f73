package pthreader

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWorkerCount is returned by New when n <= 0.
var ErrInvalidWorkerCount = errors.New("pthreader: worker count must be positive")

// PoolError provides context about a pool-level failure: which operation was
// attempted, which worker (if any) was involved, and when it happened. Unlike
// a worker callback's own failure (which surfaces only through Status), a
// PoolError always comes from the pool's own lifecycle management.
type PoolError struct {
	Op          string
	WorkerIndex int
	Err         error
	Timestamp   time.Time
}

// Error implements the error interface.
func (e *PoolError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.WorkerIndex < 0 {
		return fmt.Sprintf("pthreader: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("pthreader: %s: worker %d: %v", e.Op, e.WorkerIndex, e.Err)
}

// Unwrap returns the underlying error, supporting errors.Is and errors.As.
func (e *PoolError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
