package pthreader

import (
	"context"
	"fmt"
	"math"

	"github.com/zoobzio/capitan"
)

// StatusCallbackPanic is the status recorded for a worker whose Evaluate
// callback panicked during a cycle. It is deliberately far outside any status
// a well-behaved callback would return, so a caller scanning statuses for
// "negative means failure" still notices something unusual happened.
const StatusCallbackPanic = math.MinInt32

// runWorker is the body of every spawned goroutine (worker indices 1..n-1).
// It runs Setup once, then loops waiting for dispatched work until the slot's
// exit flag is set, at which point it runs Teardown and returns. This mirrors
// the original implementation's threaded_worker loop, translated from a
// pthread_cond_wait spin into sync.Cond.Wait. The Evaluate and Teardown
// callbacks run with slot.mu held, so a callback must never re-enter the pool.
func (p *Pool) runWorker(slot *workerSlot, initial any) {
	if printer, verbose := p.getPrinter(); verbose {
		printer.printf("launching worker %d/%d\n", slot.index+1, slot.total)
	}
	setup := p.getSetup()
	state := setup(slot.index, slot.total, initial)

	capitan.Info(context.Background(), SignalPoolWorkerSetupDone,
		FieldWorkerIndex.Field(slot.index),
		FieldTimestamp.Field(unixSeconds(p.getClock())),
	)

	slot.mu.Lock()
	slot.state = state
	slot.workFlag = false
	slot.cvDone.Signal()
	slot.mu.Unlock()

	for {
		slot.mu.Lock()
		for !slot.workFlag {
			slot.cvWork.Wait()
		}
		if slot.exit {
			teardown := p.getTeardown()
			teardown(slot.index, slot.state)
			slot.mu.Unlock()
			return
		}
		slot.status = p.safeEvaluate(slot.index, slot.state, slot.input, slot.output)
		slot.workFlag = false
		slot.cvDone.Signal()
		slot.mu.Unlock()
	}
}

// safeEvaluate invokes the pool's Evaluate callback, recovering a panic into
// StatusCallbackPanic so one misbehaving worker never takes down the whole
// pool. A panicking callback still counts toward PoolCallbackPanicsTotal and
// still fires PoolEventWorkerPanic, so callers who want to treat it as fatal
// can observe it and act.
func (p *Pool) safeEvaluate(index int, state, input, output any) (status int) {
	evaluate := p.getEvaluate()
	defer func() {
		if r := recover(); r != nil {
			status = StatusCallbackPanic
			p.reportCallbackPanic(index, r)
		}
	}()
	return evaluate(index, state, input, output)
}

func (p *Pool) reportCallbackPanic(index int, recovered any) {
	ctx := context.Background()
	err := fmt.Errorf("worker %d evaluate callback panicked: %v", index, recovered)

	p.metrics.Counter(PoolCallbackPanicsTotal).Inc()

	_, span := p.tracer.StartSpan(ctx, PoolEvaluateSpan)
	span.SetTag(PoolTagStatus, "panic")
	span.Finish()

	capitan.Error(ctx, SignalPoolWorkerPanic,
		FieldWorkerIndex.Field(index),
		FieldError.Field(err.Error()),
		FieldTimestamp.Field(unixSeconds(p.getClock())),
	)

	if p.hooks.ListenerCount(PoolEventWorkerPanic) > 0 {
		_ = p.hooks.Emit(ctx, PoolEventWorkerPanic, PoolEvent{ //nolint:errcheck
			WorkerIndex: index,
			Status:      StatusCallbackPanic,
			Err:         err,
			Timestamp:   p.getClock().Now(),
		})
	}

	printer, verbose := p.getPrinter()
	if verbose {
		printer.printf("worker %d: evaluate callback panicked: %v\n", index, recovered)
	}
}
