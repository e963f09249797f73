// Package pthreader provides a persistent worker pool for distributing a single
// user-defined computation across a fixed number of long-lived goroutines with
// minimal per-call overhead.
//
// # Overview
//
// Unlike a pool that spawns a fresh goroutine per unit of work, pthreader parks
// N-1 worker goroutines on a condition variable between calls. A caller configures
// three callbacks — Setup, Evaluate, and Teardown — and drives the pool through a
// Launch / repeated Evaluate / Close lifecycle. The calling goroutine itself acts
// as worker index 0, so an N-way pool spawns only N-1 additional goroutines.
//
// # Core Concepts
//
//   - SetupFunc initializes per-worker state once, at Launch.
//   - EvaluateFunc runs once per worker per Evaluate call, reading shared input
//     and writing into a shared output that the workers must partition by index.
//   - TeardownFunc releases per-worker state once, at Close.
//
// Every worker owns its own state value exclusively; the pool never touches one
// worker's state from another goroutine's context.
//
// # Observability
//
// Pool emits structured lifecycle signals via capitan, exposes a metricz.Registry
// of evaluate-cycle counters and worker gauges, opens tracez spans around Launch,
// Evaluate, and Close, and lets callers subscribe to per-cycle and panic events
// through hookz.
//
// # Example
//
//	pool, err := pthreader.New(4,
//	    pthreader.WithCallbacks(setup, evaluate, teardown),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := pool.Launch(context.Background(), nil); err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	output := make([]int, 4)
//	if err := pool.Evaluate(context.Background(), 10, output); err != nil {
//	    log.Fatal(err)
//	}
package pthreader
