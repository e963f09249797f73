package pthreader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Metric keys for Pool observability.
const (
	PoolEvaluateCyclesTotal         = metricz.Key("pool.evaluate.cycles.total")
	PoolCallbackPanicsTotal         = metricz.Key("pool.evaluate.callback.panics.total")
	PoolWorkersGauge                = metricz.Key("pool.workers.count")
	PoolLastEvaluateDurationSeconds = metricz.Key("pool.evaluate.last_duration.seconds")
)

// Span names for Pool lifecycle operations.
const (
	PoolLaunchSpan   = tracez.Key("pool.launch")
	PoolEvaluateSpan = tracez.Key("pool.evaluate")
	PoolCloseSpan    = tracez.Key("pool.close")
)

// Span tags for Pool lifecycle operations.
const (
	PoolTagWorkerCount = tracez.Tag("pool.worker_count")
	PoolTagStatus      = tracez.Tag("pool.status")
)

// Pool is a persistent worker pool. The zero value is not usable; construct one
// with New.
//
//nolint:govet // fieldalignment: readability over the few bytes saved by reordering
type Pool struct {
	n        int
	disabled bool

	mu     sync.RWMutex // guards configuration and lifecycle flags below
	evalMu sync.Mutex   // serializes Launch/Evaluate/Close (see DESIGN.md open question 3)

	setup    SetupFunc
	evaluate EvaluateFunc
	teardown TeardownFunc

	verbose bool
	printer *printer

	clock           clockz.Clock
	evaluateTimeout time.Duration

	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[PoolEvent]

	launched bool
	closed   bool

	slots  []*workerSlot // length n-1; slots[i] is worker index i+1
	status []int         // length n
	agg    *Aggregator
	state0 any
	wg     sync.WaitGroup
}

// New constructs a Pool for n total workers (the caller participates as worker
// 0, so n-1 goroutines are spawned on Launch). n <= 0 yields a disabled pool:
// every subsequent operation becomes a documented no-op, and the returned error
// wraps ErrInvalidWorkerCount. A disabled pool is safe to use — it just does
// nothing — so callers that want to ignore construction errors may do so.
func New(n int, opts ...PoolOption) (*Pool, error) {
	p := &Pool{
		n:        n,
		setup:    noopSetup,
		evaluate: noopEvaluate,
		teardown: noopTeardown,
		clock:    clockz.RealClock,
		metrics:  metricz.New(),
		tracer:   tracez.New(),
		hooks:    hookz.New[PoolEvent](),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.metrics.Counter(PoolEvaluateCyclesTotal)
	p.metrics.Counter(PoolCallbackPanicsTotal)
	p.metrics.Gauge(PoolWorkersGauge)
	p.metrics.Gauge(PoolLastEvaluateDurationSeconds)

	if n <= 0 {
		p.disabled = true
		return p, &PoolError{
			Op:          "new",
			WorkerIndex: -1,
			Err:         ErrInvalidWorkerCount,
			Timestamp:   p.clock.Now(),
		}
	}
	return p, nil
}

// SetSetup records the setup callback. Permitted only while not launched;
// calling after Launch has undefined effect on already-running workers.
func (p *Pool) SetSetup(f SetupFunc) {
	if f == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setup = f
}

// SetEvaluate records the evaluate callback. Permitted only while not launched.
func (p *Pool) SetEvaluate(f EvaluateFunc) {
	if f == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.evaluate = f
}

// SetTeardown records the teardown callback. Permitted only while not launched.
func (p *Pool) SetTeardown(f TeardownFunc) {
	if f == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardown = f
}

// Verbose enables the mutex-guarded stdout lifecycle banner. It must not be
// called from inside a callback (undetected, but deadlock-prone, like calling
// Evaluate from a callback).
func (p *Pool) Verbose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.verbose {
		return
	}
	p.verbose = true
	p.printer = &printer{}
}

// Quiet disables the stdout lifecycle banner.
func (p *Pool) Quiet() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.verbose {
		return
	}
	p.verbose = false
	p.printer = nil
}

// Launch spawns n-1 worker goroutines, runs Setup on every worker (including
// the controller, inline), and waits for every worker's setup to complete. It
// is a silent no-op if the pool is disabled, and a no-op that is logged in
// verbose mode and signalled if the pool is already launched or closed.
func (p *Pool) Launch(ctx context.Context, initial any) error {
	p.evalMu.Lock()
	defer p.evalMu.Unlock()

	if p.disabled {
		return nil
	}

	p.mu.Lock()
	if p.launched || p.closed {
		reason := "pool is already launched"
		if p.closed {
			reason = "pool is closed"
		}
		p.mu.Unlock()
		p.warnDisabledOperation(ctx, "launch", reason)
		return nil
	}
	setup := p.setup
	n := p.n
	verbose := p.verbose
	printer := p.printer
	p.mu.Unlock()

	ctx, span := p.tracer.StartSpan(ctx, PoolLaunchSpan)
	defer span.Finish()
	span.SetTag(PoolTagWorkerCount, fmt.Sprintf("%d", n))

	slots := make([]*workerSlot, n-1)
	status := make([]int, n)
	agg := newAggregator()

	for i := range slots {
		slot := newWorkerSlot(i+1, n)
		slot.workFlag = true // each spawned worker starts with "run your setup" pending
		slots[i] = slot
	}

	p.wg.Add(len(slots))
	for _, slot := range slots {
		go func(s *workerSlot) {
			defer p.wg.Done()
			p.runWorker(s, initial)
		}(slot)
	}

	if verbose {
		printer.printf("launching %d workers...\n", n)
		printer.printf("launching worker 1/%d\n", n)
	}
	state0 := setup(0, n, initial)

	capitan.Info(ctx, SignalPoolWorkerSetupDone,
		FieldWorkerIndex.Field(0),
		FieldTimestamp.Field(unixSeconds(p.clock)),
	)

	for i, slot := range slots {
		slot.mu.Lock()
		slot.awaitIdle()
		slot.mu.Unlock()
		if verbose {
			printer.printf("worker %d is done setting up.\n", i+2)
		}
	}

	p.mu.Lock()
	p.slots = slots
	p.status = status
	p.agg = agg
	p.state0 = state0
	p.launched = true
	p.mu.Unlock()

	p.metrics.Gauge(PoolWorkersGauge).Set(float64(n))
	capitan.Info(ctx, SignalPoolLaunched,
		FieldWorkerCount.Field(n),
		FieldTimestamp.Field(unixSeconds(p.clock)),
	)
	return nil
}

// Evaluate runs one fan-out/fan-in cycle: every worker's Evaluate callback is
// invoked exactly once against the same input/output values, the controller's
// own callback runs inline, and Evaluate blocks until every worker reports
// completion. It always returns nil: callback failures are recorded per-worker
// and surfaced only through the status queries (§7), and a disabled or
// not-launched pool is a no-op, for parity with the other lifecycle
// operations' "fails silently, logs if verbose" contract.
func (p *Pool) Evaluate(ctx context.Context, input, output any) error {
	p.evalMu.Lock()
	defer p.evalMu.Unlock()

	if p.disabled {
		return nil
	}

	p.mu.RLock()
	if !p.launched {
		p.mu.RUnlock()
		p.warnDisabledOperation(ctx, "evaluate", "pool is not launched")
		return nil
	}
	slots := p.slots
	status := p.status
	agg := p.agg
	verbose := p.verbose
	printer := p.printer
	p.mu.RUnlock()

	ctx, span := p.tracer.StartSpan(ctx, PoolEvaluateSpan)
	defer span.Finish()
	span.SetTag(PoolTagWorkerCount, fmt.Sprintf("%d", len(status)))

	start := p.clock.Now()
	agg.Reset()

	for _, slot := range slots {
		slot.mu.Lock()
		slot.awaitIdle() // defensive: should already be idle between cycles
		slot.dispatch(input, output)
		slot.mu.Unlock()
	}

	status0 := p.safeEvaluate(0, p.controllerState(), input, output)
	status[0] = status0
	agg.Observe(status0)

	for i, slot := range slots {
		slot.mu.Lock()
		slot.awaitIdle()
		st := slot.status
		slot.mu.Unlock()
		status[i+1] = st
		agg.Observe(st)
		if verbose {
			printer.printf("worker %d is done evaluating.\n", i+2)
		}
	}

	duration := p.clock.Now().Sub(start)
	p.metrics.Counter(PoolEvaluateCyclesTotal).Inc()
	p.metrics.Gauge(PoolLastEvaluateDurationSeconds).Set(duration.Seconds())

	capitan.Info(ctx, SignalPoolEvaluateCompleted,
		FieldWorkerCount.Field(len(status)),
		FieldDuration.Field(duration.Seconds()),
		FieldTimestamp.Field(unixSeconds(p.clock)),
	)
	if p.hooks.ListenerCount(PoolEventEvaluate) > 0 {
		_ = p.hooks.Emit(ctx, PoolEventEvaluate, PoolEvent{ //nolint:errcheck
			WorkerIndex: -1,
			Status:      status0,
			Timestamp:   p.clock.Now(),
		})
	}
	return nil
}

// EvaluateContext runs Evaluate but returns ctx.Err() early if ctx is done
// before every worker reports completion. It is a best-effort bound only: a
// callback already dispatched to a worker keeps running to completion, since
// the protocol has no way to interrupt a worker mid-callback (§5). Use this
// only when a caller genuinely needs a deadline on the wait itself, e.g. to
// decide whether to keep polling a pool shared with other goroutines.
func (p *Pool) EvaluateContext(ctx context.Context, input, output any) error {
	p.mu.RLock()
	timeout := p.evaluateTimeout
	p.mu.RUnlock()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- p.Evaluate(ctx, input, output)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close signals every worker to exit, runs Teardown on every worker (including
// the controller, inline), and waits for every worker goroutine to return. It
// is a silent no-op if the pool is disabled, and a no-op that is logged in
// verbose mode and signalled if the pool is not launched.
func (p *Pool) Close() error {
	p.evalMu.Lock()
	defer p.evalMu.Unlock()

	if p.disabled {
		return nil
	}

	p.mu.Lock()
	if !p.launched {
		p.mu.Unlock()
		p.warnDisabledOperation(context.Background(), "close", "pool is not launched")
		return nil
	}
	slots := p.slots
	teardown := p.teardown
	verbose := p.verbose
	printer := p.printer
	p.mu.Unlock()

	ctx, span := p.tracer.StartSpan(context.Background(), PoolCloseSpan)
	defer span.Finish()

	if verbose {
		printer.printf("shutting down %d workers...\n", len(slots)+1)
	}

	for _, slot := range slots {
		slot.mu.Lock()
		slot.awaitIdle()
		slot.exit = true
		slot.workFlag = true
		slot.cvWork.Signal()
		slot.mu.Unlock()
	}

	teardown(0, p.controllerState())

	p.wg.Wait()

	p.mu.Lock()
	p.launched = false
	p.closed = true
	p.slots = nil
	p.status = nil
	p.state0 = nil
	p.mu.Unlock()

	capitan.Info(ctx, SignalPoolClosed,
		FieldTimestamp.Field(unixSeconds(p.clock)),
	)
	return nil
}

// Discard closes the pool if still launched and releases its observability
// components. It mirrors the symmetric destructor of the original C++ type;
// Go's garbage collector makes it optional for memory, but it gives tests (and
// careful callers) one call that guarantees no goroutines remain.
func (p *Pool) Discard() error {
	p.mu.RLock()
	launched := p.launched
	p.mu.RUnlock()

	var err error
	if launched {
		err = p.Close()
	}

	p.Quiet()
	p.hooks.Close()
	p.tracer.Close()
	return err
}

// Status returns the most recent status recorded for worker i, or 0 if the
// pool is not launched (before Launch or after Close) or i is out of range.
func (p *Pool) Status(i int) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.launched || i < 0 || i >= len(p.status) {
		return 0
	}
	return p.status[i]
}

// AllZero reports whether every worker's last status equaled zero.
func (p *Pool) AllZero() bool { allZero, _, _, _, _, _ := p.snapshot(); return allZero }

// AllPositive reports whether every worker's last status was strictly positive.
func (p *Pool) AllPositive() bool { _, allPositive, _, _, _, _ := p.snapshot(); return allPositive }

// AllNegative reports whether every worker's last status was strictly negative.
func (p *Pool) AllNegative() bool { _, _, allNegative, _, _, _ := p.snapshot(); return allNegative }

// AnyZero reports whether any worker's last status equaled zero.
func (p *Pool) AnyZero() bool { _, _, _, anyZero, _, _ := p.snapshot(); return anyZero }

// AnyPositive reports whether any worker's last status was strictly positive.
func (p *Pool) AnyPositive() bool { _, _, _, _, anyPositive, _ := p.snapshot(); return anyPositive }

// AnyNegative reports whether any worker's last status was strictly negative.
func (p *Pool) AnyNegative() bool { _, _, _, _, _, anyNegative := p.snapshot(); return anyNegative }

func (p *Pool) snapshot() (allZero, allPositive, allNegative, anyZero, anyPositive, anyNegative bool) {
	p.mu.RLock()
	agg := p.agg
	p.mu.RUnlock()
	if agg == nil {
		return true, true, true, false, false, false
	}
	return agg.Snapshot()
}

// Hooks returns the pool's lifecycle event hook registry, for subscribing to
// OnEvaluate/OnWorkerPanic-style async observers.
func (p *Pool) Hooks() *hookz.Hooks[PoolEvent] { return p.hooks }

// Metrics returns the pool's metrics registry.
func (p *Pool) Metrics() *metricz.Registry { return p.metrics }

// Tracer returns the pool's tracer.
func (p *Pool) Tracer() *tracez.Tracer { return p.tracer }

// OnEvaluate registers a handler invoked after each Evaluate cycle completes.
func (p *Pool) OnEvaluate(handler func(context.Context, PoolEvent) error) error {
	_, err := p.hooks.Hook(PoolEventEvaluate, handler)
	return err
}

// OnWorkerPanic registers a handler invoked whenever a worker's Evaluate
// callback panics.
func (p *Pool) OnWorkerPanic(handler func(context.Context, PoolEvent) error) error {
	_, err := p.hooks.Hook(PoolEventWorkerPanic, handler)
	return err
}

func (p *Pool) controllerState() any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state0
}

func (p *Pool) getSetup() SetupFunc {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.setup
}

func (p *Pool) getEvaluate() EvaluateFunc {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.evaluate
}

func (p *Pool) getTeardown() TeardownFunc {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.teardown
}

func (p *Pool) getClock() clockz.Clock {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.clock == nil {
		return clockz.RealClock
	}
	return p.clock
}

func (p *Pool) getPrinter() (*printer, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.printer, p.verbose
}

func (p *Pool) warnDisabledOperation(ctx context.Context, op, reason string) {
	printer, verbose := p.getPrinter()
	if verbose {
		printer.printf("pthreader: %s: %s\n", op, reason)
	}
	capitan.Warn(ctx, SignalPoolDisabledOperation,
		FieldOperation.Field(op),
		FieldError.Field(reason),
		FieldTimestamp.Field(unixSeconds(p.clock)),
	)
}

func unixSeconds(clock clockz.Clock) float64 {
	if clock == nil {
		return float64(clockz.RealClock.Now().Unix())
	}
	return float64(clock.Now().Unix())
}
