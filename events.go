package pthreader

import (
	"time"

	"github.com/zoobzio/hookz"
)

// Hook event keys for Pool lifecycle events.
const (
	PoolEventEvaluate    = hookz.Key("pool.evaluate")
	PoolEventWorkerPanic = hookz.Key("pool.worker.panic")
)

// PoolEvent is emitted via hookz after an evaluate cycle completes and
// whenever a worker's Evaluate callback panics, giving observers visibility
// into cycle outcomes without blocking the cycle itself.
type PoolEvent struct {
	WorkerIndex int       // -1 for a whole-cycle PoolEventEvaluate; the panicking worker's index for PoolEventWorkerPanic
	Status      int       // the status recorded for WorkerIndex, or the controller's status for a whole-cycle event
	Err         error     // non-nil only for PoolEventWorkerPanic
	Timestamp   time.Time
}
