package pthreader

// Aggregator accumulates the six monotone status bits described in the
// pool's concurrency model across one evaluate cycle: every bit starts
// optimistic (true for the All* bits, false for the Any* bits) and is
// narrowed by each call to Observe. It deliberately replaces the original
// implementation's transcription bug, where "any status equals zero" was
// computed from the positive-status accumulator instead of its own — see
// DESIGN.md for the bug this corrects.
type Aggregator struct {
	allZero     bool
	allPositive bool
	allNegative bool
	anyZero     bool
	anyPositive bool
	anyNegative bool
}

func newAggregator() *Aggregator {
	a := &Aggregator{}
	a.Reset()
	return a
}

// Reset returns the aggregator to its pre-cycle state: vacuously true for
// every All* bit, false for every Any* bit.
func (a *Aggregator) Reset() {
	a.allZero = true
	a.allPositive = true
	a.allNegative = true
	a.anyZero = false
	a.anyPositive = false
	a.anyNegative = false
}

// Observe folds one worker's status into the running aggregate. Call it
// once per worker per cycle, in any order.
func (a *Aggregator) Observe(status int) {
	switch {
	case status == 0:
		a.anyZero = true
		a.allPositive = false
		a.allNegative = false
	case status > 0:
		a.anyPositive = true
		a.allZero = false
		a.allNegative = false
	default:
		a.anyNegative = true
		a.allZero = false
		a.allPositive = false
	}
}

// Snapshot returns the six bits in the fixed order AllZero, AllPositive,
// AllNegative, AnyZero, AnyPositive, AnyNegative.
func (a *Aggregator) Snapshot() (allZero, allPositive, allNegative, anyZero, anyPositive, anyNegative bool) {
	return a.allZero, a.allPositive, a.allNegative, a.anyZero, a.anyPositive, a.anyNegative
}

// Recompute derives the six status bits from a full slice of statuses in one
// pass, with no incremental state. It exists alongside Aggregator.Observe for
// callers that already have every status collected (e.g. tests asserting on
// a known status vector) and would rather not construct an Aggregator.
func Recompute(statuses []int) (allZero, allPositive, allNegative, anyZero, anyPositive, anyNegative bool) {
	a := newAggregator()
	for _, s := range statuses {
		a.Observe(s)
	}
	return a.Snapshot()
}
