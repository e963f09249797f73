package pthreader

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestPool_OnWorkerPanicHook(t *testing.T) {
	pool, err := New(2, WithCallbacks(
		nil,
		func(index int, _, _, _ any) int {
			if index == 1 {
				panic("worker failure")
			}
			return 0
		},
		nil,
	))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pool.Discard() //nolint:errcheck

	var mu sync.Mutex
	var got PoolEvent
	done := make(chan struct{})

	if err := pool.OnWorkerPanic(func(_ context.Context, e PoolEvent) error {
		mu.Lock()
		got = e
		mu.Unlock()
		close(done)
		return nil
	}); err != nil {
		t.Fatalf("OnWorkerPanic: %v", err)
	}

	ctx := context.Background()
	if err := pool.Launch(ctx, nil); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if err := pool.Evaluate(ctx, nil, nil); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for PoolEventWorkerPanic")
	}

	mu.Lock()
	defer mu.Unlock()
	if got.WorkerIndex != 1 {
		t.Errorf("WorkerIndex = %d, want 1", got.WorkerIndex)
	}
	if got.Status != StatusCallbackPanic {
		t.Errorf("Status = %d, want StatusCallbackPanic", got.Status)
	}
	if got.Err == nil {
		t.Error("expected a non-nil Err")
	}
}

func TestPool_HooksListenerCount(t *testing.T) {
	pool, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pool.Discard() //nolint:errcheck

	if pool.Hooks().ListenerCount(PoolEventEvaluate) != 0 {
		t.Fatal("expected no listeners before registration")
	}
	if err := pool.OnEvaluate(func(context.Context, PoolEvent) error { return nil }); err != nil {
		t.Fatalf("OnEvaluate: %v", err)
	}
	if pool.Hooks().ListenerCount(PoolEventEvaluate) != 1 {
		t.Error("expected exactly one listener after registration")
	}
}
