package main

import (
	"runtime"
	"testing"
)

func TestStatusArrayInitialPhase(t *testing.T) {
	sa := NewStatusArray(3)
	for i := 0; i < 3; i++ {
		if sa.Get(i) != PhaseInitBegin {
			t.Errorf("cell %d: got %v, want PhaseInitBegin", i, sa.Get(i))
		}
	}
}

func TestCoordinatorAwaitPhaseBlocksUntilAllReach(t *testing.T) {
	sa := NewStatusArray(2)
	c := NewCoordinator(sa)

	sa.Set(0, PhaseRenderComplete)
	done := make(chan error, 1)
	go func() { done <- c.AwaitPhase(PhaseRenderComplete) }()

	for i := 0; i < 1000; i++ {
		runtime.Gosched()
	}
	select {
	case <-done:
		t.Fatal("coordinator must not observe phase P+1 before every cell reaches phase P")
	default:
	}

	sa.Set(1, PhaseRenderComplete)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCoordinatorDetectsWorkerFailure(t *testing.T) {
	sa := NewStatusArray(2)
	c := NewCoordinator(sa)
	sa.Set(0, PhaseWorkerFailed)
	sa.Set(1, PhaseRenderComplete)

	if err := c.AwaitPhase(PhaseRenderComplete); err == nil {
		t.Fatal("expected an error when a worker reports failure")
	}
}

func TestCoordinatorAdvanceSetsAllCells(t *testing.T) {
	sa := NewStatusArray(3)
	c := NewCoordinator(sa)
	c.Advance(PhaseRenderBegin)
	for i := 0; i < 3; i++ {
		if sa.Get(i) != PhaseRenderBegin {
			t.Errorf("cell %d not advanced: got %v", i, sa.Get(i))
		}
	}
}
