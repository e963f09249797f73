package pthreader

// SetupFunc initializes per-worker state. It is invoked exactly once per worker,
// during Launch, and runs concurrently with every other worker's Setup call. The
// returned value is owned by the calling worker: it is passed unchanged to every
// subsequent Evaluate and Teardown call for that worker index, and no other
// worker ever observes it.
type SetupFunc func(index, total int, initial any) any

// EvaluateFunc performs one worker's share of a single evaluate cycle. input and
// output are the same values passed to Pool.Evaluate for every worker in the
// cycle; workers must partition writes to output themselves (the pool does not
// partition data on their behalf), typically by storing a worker's result at
// position index of a slice or map held in output.
type EvaluateFunc func(index int, state, input, output any) int

// TeardownFunc releases whatever Setup allocated for a worker. It is invoked
// exactly once per worker, during Close, before that worker's goroutine returns.
type TeardownFunc func(index int, state any)

func noopSetup(_, _ int, _ any) any       { return nil }
func noopEvaluate(_ int, _, _, _ any) int { return 0 }
func noopTeardown(_ int, _ any)           {}
