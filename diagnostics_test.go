package pthreader

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/capitan"
)

func TestPool_EmitsLaunchedSignal(t *testing.T) {
	var mu sync.Mutex
	var workerCount int
	seen := make(chan struct{})

	listener := capitan.Hook(SignalPoolLaunched, func(_ context.Context, e *capitan.Event) {
		mu.Lock()
		defer mu.Unlock()
		workerCount, _ = FieldWorkerCount.From(e)
		close(seen)
	})
	defer listener.Close()

	pool, err := New(3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pool.Discard() //nolint:errcheck

	if err := pool.Launch(context.Background(), nil); err != nil {
		t.Fatalf("Launch: %v", err)
	}

	select {
	case <-seen:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for SignalPoolLaunched")
	}

	mu.Lock()
	defer mu.Unlock()
	if workerCount != 3 {
		t.Errorf("FieldWorkerCount = %d, want 3", workerCount)
	}
}

func TestPool_EmitsDisabledOperationWarning(t *testing.T) {
	var mu sync.Mutex
	var op string
	seen := make(chan struct{})

	listener := capitan.Hook(SignalPoolDisabledOperation, func(_ context.Context, e *capitan.Event) {
		mu.Lock()
		defer mu.Unlock()
		op, _ = FieldOperation.From(e)
		select {
		case <-seen:
		default:
			close(seen)
		}
	})
	defer listener.Close()

	pool, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pool.Discard() //nolint:errcheck

	if err := pool.Evaluate(context.Background(), nil, nil); err != nil {
		t.Fatalf("Evaluate on unlaunched pool: %v", err)
	}

	select {
	case <-seen:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for SignalPoolDisabledOperation")
	}

	mu.Lock()
	defer mu.Unlock()
	if op != "evaluate" {
		t.Errorf("FieldOperation = %q, want %q", op, "evaluate")
	}
}
