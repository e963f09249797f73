package pthreader

import (
	"fmt"
	"os"
	"sync"

	"github.com/zoobzio/capitan"
)

// Signal constants for Pool lifecycle events.
// Signals follow the pattern: <component>.<event>.
const (
	SignalPoolLaunched          capitan.Signal = "pool.launched"
	SignalPoolWorkerSetupDone   capitan.Signal = "pool.worker.setup-done"
	SignalPoolEvaluateCompleted capitan.Signal = "pool.evaluate.completed"
	SignalPoolClosed            capitan.Signal = "pool.closed"
	SignalPoolWorkerPanic       capitan.Signal = "pool.worker.panic"
	SignalPoolDisabledOperation capitan.Signal = "pool.disabled-operation"
)

// Field keys using capitan primitive types.
var (
	FieldWorkerIndex = capitan.NewIntKey("worker_index")
	FieldWorkerCount = capitan.NewIntKey("worker_count")
	FieldOperation   = capitan.NewStringKey("operation")
	FieldError       = capitan.NewStringKey("error")
	FieldStatus      = capitan.NewIntKey("status")
	FieldDuration    = capitan.NewFloat64Key("duration")
	FieldTimestamp   = capitan.NewFloat64Key("timestamp")
)

// printer serializes the pool's verbose stdout lifecycle banner, grounded
// on the original implementation's be_verbose output. A *printer is nil-safe
// only through Pool.getPrinter pairing it with the verbose flag; printf
// itself assumes a non-nil receiver.
type printer struct {
	mu sync.Mutex
}

func (p *printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(os.Stdout, format, args...)
}
