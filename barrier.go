// barrier.go - phase gate between pipeline stages.
//
// Each thread owns one phase cell backed by sync/atomic rather than a
// mutex-guarded struct: a missed transition self-heals on the next
// spin, so relaxed atomics are enough and a global lock would only add
// contention.

package main

import "sync/atomic"

// Phase is a strictly monotonic pipeline stage code. Gaps of 10 between
// phase groups leave room for sub-phases without renumbering everything
// downstream.
type Phase int32

const (
	PhaseInitBegin    Phase = 0
	PhaseInitComplete Phase = 2

	PhaseRenderBegin    Phase = 10
	PhaseRenderComplete Phase = 12

	PhasePostBegin    Phase = 20
	PhasePostComplete Phase = 22

	PhaseBlurHBegin    Phase = 30
	PhaseBlurHComplete Phase = 32

	PhaseBlurVBegin    Phase = 40
	PhaseBlurVComplete Phase = 42

	PhaseResizePrepBegin Phase = 50
	PhaseResizeComplete  Phase = 52

	PhaseSequenceBegin    Phase = 60
	PhaseSequenceComplete Phase = 62

	PhaseOutputBegin    Phase = 70
	PhaseOutputComplete Phase = 72

	// PhaseWorkerFailed is the sentinel a worker reports in place of
	// any "complete" phase when it hits an unrecoverable error; the
	// coordinator checks for it after every barrier.
	PhaseWorkerFailed Phase = -1
)

// StatusArray holds one phase cell per thread (aggregator included).
type StatusArray struct {
	cells []atomic.Int32
}

// NewStatusArray allocates a status array sized for threadCount
// threads, all initialized to PhaseInitBegin.
func NewStatusArray(threadCount int) *StatusArray {
	sa := &StatusArray{cells: make([]atomic.Int32, threadCount)}
	for i := range sa.cells {
		sa.cells[i].Store(int32(PhaseInitBegin))
	}
	return sa
}

// Set publishes threadIndex's new phase.
func (sa *StatusArray) Set(threadIndex int, p Phase) {
	sa.cells[threadIndex].Store(int32(p))
}

// Get reads threadIndex's current phase.
func (sa *StatusArray) Get(threadIndex int) Phase {
	return Phase(sa.cells[threadIndex].Load())
}

// SpinUntil busy-waits until threadIndex's own cell reaches at least p,
// or PhaseWorkerFailed is observed (in which case ok is false).
func (sa *StatusArray) SpinUntil(threadIndex int, p Phase) (ok bool) {
	for {
		cur := sa.Get(threadIndex)
		if cur == PhaseWorkerFailed {
			return false
		}
		if cur >= p {
			return true
		}
	}
}

// AllAtLeast reports whether every cell has reached at least p, and
// whether any cell reports failure.
func (sa *StatusArray) AllAtLeast(p Phase) (all bool, anyFailed bool) {
	all = true
	for i := range sa.cells {
		c := Phase(sa.cells[i].Load())
		if c == PhaseWorkerFailed {
			anyFailed = true
		}
		if c < p {
			all = false
		}
	}
	return all, anyFailed
}

// AnyFailed reports whether any cell currently reports PhaseWorkerFailed.
func (sa *StatusArray) AnyFailed() bool {
	for i := range sa.cells {
		if Phase(sa.cells[i].Load()) == PhaseWorkerFailed {
			return true
		}
	}
	return false
}

// Coordinator drives every worker (and the aggregator) from one
// "complete" phase to the next "begin" phase, only after all have
// reached "complete": workers spin on their own cell, the coordinator
// spins on the set.
type Coordinator struct {
	status *StatusArray
}

func NewCoordinator(status *StatusArray) *Coordinator { return &Coordinator{status: status} }

// AwaitPhase busy-waits until every cell has reached at least p. It
// returns an error if any worker reports failure first.
func (c *Coordinator) AwaitPhase(p Phase) error {
	for {
		all, failed := c.status.AllAtLeast(p)
		if failed {
			return newError(ErrWorker, "worker reported failure before reaching phase %d", p)
		}
		if all {
			return nil
		}
	}
}

// Advance transitions every cell to next, to be called once AwaitPhase
// for the matching "complete" phase has returned.
func (c *Coordinator) Advance(next Phase) {
	for i := range c.status.cells {
		c.status.cells[i].Store(int32(next))
	}
}
