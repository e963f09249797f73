package pthreader

import (
	"context"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestWithCallbacks_NilLeavesDefaults(t *testing.T) {
	pool, err := New(2, WithCallbacks(nil, nil, nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pool.Discard() //nolint:errcheck

	if pool.getEvaluate() == nil {
		t.Fatal("evaluate should fall back to noopEvaluate, not nil")
	}
	if got := pool.getEvaluate()(0, nil, nil, nil); got != 0 {
		t.Errorf("noopEvaluate returned %d, want 0", got)
	}
}

func TestWithVerbose(t *testing.T) {
	pool, err := New(1, WithVerbose())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pool.Discard() //nolint:errcheck

	_, verbose := pool.getPrinter()
	if !verbose {
		t.Error("WithVerbose should enable verbose from construction")
	}
}

func TestWithClock(t *testing.T) {
	clock := clockz.NewFakeClock()
	pool, err := New(1, WithClock(clock))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pool.Discard() //nolint:errcheck

	if pool.getClock() != clock {
		t.Error("WithClock should override the pool's clock")
	}
}

func TestWithClock_NilIgnored(t *testing.T) {
	pool, err := New(1, WithClock(nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pool.Discard() //nolint:errcheck

	if pool.getClock() == nil {
		t.Error("a nil WithClock argument must not leave the pool's clock nil")
	}
}

func TestWithEvaluateTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	pool, err := New(1, WithEvaluateTimeout(5*time.Millisecond), WithCallbacks(
		nil,
		func(_ int, _, _, _ any) int { <-block; return 0 },
		nil,
	))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if err := pool.Launch(ctx, nil); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if err := pool.EvaluateContext(ctx, nil, nil); err == nil {
		t.Error("expected a timeout error from EvaluateContext")
	}
}
