package pthreader

import "sync"

// workerSlot is the per-worker handoff block for worker indices 1..n-1. Worker
// index 0 is the controller goroutine and has no slot of its own — it never
// waits on a condition variable, since it runs inline.
//
// workFlag, exit, state, input, output, and status are all guarded by mu. cvWork
// is signalled exactly once per false->true transition of workFlag (the
// controller waking a worker); cvDone is signalled exactly once per true->false
// transition (a worker reporting completion). Pairing each wait with the same
// mutex used to mutate workFlag is what prevents a lost wakeup: the "is there
// work?" check and the wait are atomic with respect to the signaller.
type workerSlot struct {
	mu     sync.Mutex
	cvWork *sync.Cond
	cvDone *sync.Cond

	workFlag bool
	exit     bool

	state  any
	input  any
	output any
	status int

	index int // 1..n-1
	total int // n
}

func newWorkerSlot(index, total int) *workerSlot {
	s := &workerSlot{index: index, total: total}
	s.cvWork = sync.NewCond(&s.mu)
	s.cvDone = sync.NewCond(&s.mu)
	return s
}

// awaitIdle blocks until the slot reports no pending/in-progress work. Callers
// must already hold s.mu.
func (s *workerSlot) awaitIdle() {
	for s.workFlag {
		s.cvDone.Wait()
	}
}

// dispatch stores input/output, marks the slot as having work, and wakes the
// worker. Callers must already hold s.mu and must have called awaitIdle first.
func (s *workerSlot) dispatch(input, output any) {
	s.input = input
	s.output = output
	s.workFlag = true
	s.cvWork.Signal()
}
