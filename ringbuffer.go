// ringbuffer.go - lock-free thread ring buffer.
//
// N contiguous per-worker sections of K slots each. A worker writes
// only to its own section; the aggregator is the sole reader of every
// slot. Each slot brackets its payload with dual status words so a
// torn store spanning two cache lines shows up as (1,0) and is
// retried rather than consumed half-written.

package main

import (
	"sync/atomic"
)

// ringSlot is padded to a cache line (64 bytes) so adjacent slots in
// the same section never false-share.
type ringSlot struct {
	statusLeft  atomic.Int32
	imageOffset int
	r, g, b     float64
	statusRight atomic.Int32
	_pad        [20]byte
}

const (
	slotEmpty = 0
	slotFull  = 1
)

// RingBuffer is the flat N*K slot array, sliced into N worker sections.
type RingBuffer struct {
	slots        []ringSlot
	slotsPerWork int
}

// NewRingBuffer allocates a ring with workerCount sections of
// slotsPerWorker slots each.
func NewRingBuffer(workerCount, slotsPerWorker int) *RingBuffer {
	return &RingBuffer{
		slots:        make([]ringSlot, workerCount*slotsPerWorker),
		slotsPerWork: slotsPerWorker,
	}
}

// WorkerSection returns a handle scoped to one worker's section,
// tracking its own write cursor.
func (rb *RingBuffer) WorkerSection(workerIndex int) *RingWriter {
	base := workerIndex * rb.slotsPerWork
	return &RingWriter{slots: rb.slots[base : base+rb.slotsPerWork]}
}

// RingWriter is the producer-side handle for one worker's section.
type RingWriter struct {
	slots  []ringSlot
	cursor int
}

// alive is checked while spinning on a full slot, so a dead coordinator
// does not hang a worker forever.
type aliveFunc func() bool

// Push blocks (busy-waits) until the next slot in this worker's ring is
// free, then commits offset/(r,g,b) into it. It returns false if alive
// reports the coordinator has died while spinning.
func (w *RingWriter) Push(offset int, r, g, b float64, alive aliveFunc) bool {
	slot := &w.slots[w.cursor]
	for slot.statusLeft.Load() != slotEmpty || slot.statusRight.Load() != slotEmpty {
		if alive != nil && !alive() {
			return false
		}
	}
	slot.statusLeft.Store(slotFull)
	slot.imageOffset = offset
	slot.r, slot.g, slot.b = r, g, b
	slot.statusRight.Store(slotFull) // release: payload visible before this store
	w.cursor = (w.cursor + 1) % len(w.slots)
	return true
}

// RingReader is the aggregator's view over one worker's section.
type RingReader struct {
	slots  []ringSlot
	cursor int
}

// Reader returns the aggregator-side reader for workerIndex's section.
func (rb *RingBuffer) Reader(workerIndex int) *RingReader {
	base := workerIndex * rb.slotsPerWork
	return &RingReader{slots: rb.slots[base : base+rb.slotsPerWork]}
}

// TryConsume attempts to consume the next slot in round-robin order.
// ok is false if the slot is empty or only partially committed (a torn
// write in flight): the caller should retry later rather than treat
// this as data.
func (r *RingReader) TryConsume() (offset int, rr, gg, bb float64, ok bool) {
	slot := &r.slots[r.cursor]
	left := slot.statusLeft.Load()
	right := slot.statusRight.Load() // acquire: payload visible after this load
	if left != slotFull || right != slotFull {
		return 0, 0, 0, 0, false
	}
	offset, rr, gg, bb = slot.imageOffset, slot.r, slot.g, slot.b
	slot.statusLeft.Store(slotEmpty)
	slot.statusRight.Store(slotEmpty)
	r.cursor = (r.cursor + 1) % len(r.slots)
	return offset, rr, gg, bb, true
}

// Empty reports whether every slot in this section is currently
// unowned by the worker (both status words 0).
func (r *RingReader) Empty() bool {
	for i := range r.slots {
		if r.slots[i].statusLeft.Load() != slotEmpty || r.slots[i].statusRight.Load() != slotEmpty {
			return false
		}
	}
	return true
}
