package main

import "testing"

func TestDedupCoalescesSameOffset(t *testing.T) {
	var pushes [][4]float64
	c := newDedupCache(8, 10, 10, func(offset int, r, g, b float64) {
		pushes = append(pushes, [4]float64{float64(offset), r, g, b})
	})

	c.Submit(5, 0.25, 0, 0)
	c.Submit(5, 0.75, 0, 0)
	c.Flush()

	if len(pushes) != 1 {
		t.Fatalf("expected exactly one ring-buffer entry for two submissions to the same offset, got %d", len(pushes))
	}
	if pushes[0][1] != 1.0 {
		t.Errorf("merged entry should sum contributions: got %v want 1.0", pushes[0][1])
	}
}

func TestDedupFlushesAtCapacity(t *testing.T) {
	var pushes int
	c := newDedupCache(2, 10, 10, func(offset int, r, g, b float64) { pushes++ })

	c.Submit(1, 1, 0, 0)
	c.Submit(2, 1, 0, 0)
	c.Submit(3, 1, 0, 0) // forces a flush of the first two before inserting

	if pushes != 2 {
		t.Fatalf("expected a flush at capacity to push 2 entries, got %d", pushes)
	}
	c.Flush()
	if pushes != 3 {
		t.Fatalf("expected final flush to push the remaining entry, total got %d", pushes)
	}
}

func TestDedupIndexCollisionNeverLosesContributions(t *testing.T) {
	var sum float64
	// Same key, different offset is impossible when total pixels <=
	// 2^24 (index key == offset), so exercise the >2^24 modulo path.
	big := newDedupCache(8, 1<<13, 1<<13, func(offset int, r, g, b float64) { sum += r }) // 2^26 pixels > 2^24
	offsetA := 0
	offsetB := maxDedupIndex // same key (0) under modulo, different offset

	big.Submit(offsetA, 1, 0, 0)
	big.Submit(offsetB, 2, 0, 0) // collides with A's index slot -> bypasses cache
	big.Flush()                  // delivers A's still-cached entry

	if sum != 3 {
		t.Errorf("collision must not lose either contribution: got sum %v want 3 (1 from A's flush + 2 from B's direct bypass)", sum)
	}
}
