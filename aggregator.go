// aggregator.go - single dedicated aggregator thread.
//
// Loops over worker sections round-robin, applying additive updates to
// the shared composition image with no locking (single writer).

package main

// Aggregator drains every worker's ring-buffer section into img.
type Aggregator struct {
	ring    *RingBuffer
	img     *Image
	status  *StatusArray
	workers int
	selfIdx int // this thread's own cell in status, for liveness-ish bookkeeping
}

func NewAggregator(ring *RingBuffer, img *Image, status *StatusArray, workers, selfIdx int) *Aggregator {
	return &Aggregator{ring: ring, img: img, status: status, workers: workers, selfIdx: selfIdx}
}

// Run drains ring-buffer sections round-robin until every worker has
// signaled render-complete AND one full empty-buffer pass finds every
// section empty. The extra pass avoids a race where a worker commits
// its last slot in the gap between this loop's last read and its
// render-complete check.
func (a *Aggregator) Run() error {
	readers := make([]*RingReader, a.workers)
	for i := range readers {
		readers[i] = a.ring.Reader(i)
	}

	for {
		drainedAny := false
		for i, r := range readers {
			for {
				offset, rr, gg, bb, ok := r.TryConsume()
				if !ok {
					break
				}
				a.img.AddAt(offset, rr, gg, bb)
				drainedAny = true
				_ = i
			}
		}

		allDone, failed := a.workersAtLeast(PhaseRenderComplete)
		if failed {
			a.status.Set(a.selfIdx, PhaseWorkerFailed)
			return newError(ErrWorker, "worker failed during render")
		}
		if allDone && !drainedAny {
			allEmpty := true
			for _, r := range readers {
				if !r.Empty() {
					allEmpty = false
					break
				}
			}
			if allEmpty {
				return nil
			}
		}
	}
}

// workersAtLeast checks only the worker cells (never the aggregator's
// own cell, which the coordinator does not advance independently).
func (a *Aggregator) workersAtLeast(p Phase) (all bool, anyFailed bool) {
	all = true
	for i := 0; i < a.workers; i++ {
		c := a.status.Get(i)
		if c == PhaseWorkerFailed {
			anyFailed = true
		}
		if c < p {
			all = false
		}
	}
	return all, anyFailed
}
