package main

import "testing"

func TestRingBufferPushConsume(t *testing.T) {
	rb := NewRingBuffer(1, 4)
	w := rb.WorkerSection(0)
	r := rb.Reader(0)

	if ok := w.Push(42, 1, 2, 3, nil); !ok {
		t.Fatal("push into empty slot should succeed")
	}
	offset, rr, gg, bb, ok := r.TryConsume()
	if !ok {
		t.Fatal("consume should succeed after a push")
	}
	if offset != 42 || rr != 1 || gg != 2 || bb != 3 {
		t.Errorf("got (%d,%v,%v,%v), want (42,1,2,3)", offset, rr, gg, bb)
	}
	if _, _, _, _, ok := r.TryConsume(); ok {
		t.Error("consuming an already-drained slot should fail")
	}
}

func TestRingBufferTornWriteNotConsumed(t *testing.T) {
	rb := NewRingBuffer(1, 2)
	r := rb.Reader(0)
	slot := &rb.slots[0]

	slot.statusLeft.Store(slotFull)
	// statusRight intentionally left at slotEmpty: simulates a torn
	// write in flight.
	if _, _, _, _, ok := r.TryConsume(); ok {
		t.Error("a slot with status_left=1, status_right=0 must never be consumed")
	}
}

func TestRingBufferEmpty(t *testing.T) {
	rb := NewRingBuffer(1, 2)
	r := rb.Reader(0)
	if !r.Empty() {
		t.Fatal("freshly allocated ring section should be empty")
	}
	w := rb.WorkerSection(0)
	w.Push(1, 0, 0, 0, nil)
	if r.Empty() {
		t.Error("section with one committed slot should not report empty")
	}
}

func TestRingBufferRoundRobinAcrossWorkers(t *testing.T) {
	rb := NewRingBuffer(2, 2)
	rb.WorkerSection(0).Push(100, 1, 0, 0, nil)
	rb.WorkerSection(1).Push(200, 0, 1, 0, nil)

	r0 := rb.Reader(0)
	r1 := rb.Reader(1)

	off0, _, _, _, ok0 := r0.TryConsume()
	off1, _, _, _, ok1 := r1.TryConsume()
	if !ok0 || !ok1 || off0 != 100 || off1 != 200 {
		t.Errorf("workers must write only to their own section: got (%d,%d)", off0, off1)
	}
}
