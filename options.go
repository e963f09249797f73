package pthreader

import (
	"time"

	"github.com/zoobzio/clockz"
)

// PoolOption is a functional option for configuring a Pool at construction.
type PoolOption func(*Pool)

// WithVerbose enables the stdout lifecycle banner from construction onward,
// equivalent to calling Verbose() immediately after New.
func WithVerbose() PoolOption {
	return func(p *Pool) {
		p.verbose = true
		p.printer = &printer{}
	}
}

// WithClock overrides the pool's time source. Intended for tests that need
// deterministic durations; production callers should leave this unset, in
// which case the pool uses clockz.RealClock.
func WithClock(clock clockz.Clock) PoolOption {
	return func(p *Pool) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithCallbacks sets the Setup, Evaluate, and Teardown callbacks in one call.
// A nil argument leaves the corresponding callback at its no-op default.
func WithCallbacks(setup SetupFunc, evaluate EvaluateFunc, teardown TeardownFunc) PoolOption {
	return func(p *Pool) {
		if setup != nil {
			p.setup = setup
		}
		if evaluate != nil {
			p.evaluate = evaluate
		}
		if teardown != nil {
			p.teardown = teardown
		}
	}
}

// WithEvaluateTimeout sets the deadline EvaluateContext applies on top of any
// deadline already present on the context it is given. A zero (the default)
// means EvaluateContext imposes no deadline of its own.
func WithEvaluateTimeout(d time.Duration) PoolOption {
	return func(p *Pool) {
		p.evaluateTimeout = d
	}
}
