// dedup.go - Component E: per-worker dedup cache.
//
// Thread-local, no synchronization. Coalesces coincident pixel writes
// before they cross into the shared ring buffer: consecutive stars at
// nearby positions frequently hit the same output pixel, and Airy
// splatting amplifies this by up to max_extent^2.

package main

const maxDedupIndex = 1 << 24

type dedupEntry struct {
	offset     int
	r, g, b    float64
	inUse      bool
}

// dedupCache is one worker's bounded append buffer plus an index from
// image offset (or its low 24 bits) to at most one entry.
type dedupCache struct {
	entries  []dedupEntry
	index    map[int]int // image offset key -> entries slice position
	capacity int
	indexKey func(offset int) int
	sink     func(offset int, r, g, b float64) // push straight to ring buffer
}

// newDedupCache builds a cache sized for an image of imgW*imgH pixels:
// the index key is the plain offset when the image fits in 2^24
// pixels, otherwise offset mod 2^24.
func newDedupCache(capacity, imgW, imgH int, sink func(offset int, r, g, b float64)) *dedupCache {
	total := imgW * imgH
	var keyFn func(int) int
	if total <= maxDedupIndex {
		keyFn = func(o int) int { return o }
	} else {
		keyFn = func(o int) int { return o % maxDedupIndex }
	}
	return &dedupCache{
		entries:  make([]dedupEntry, 0, capacity),
		index:    make(map[int]int, capacity),
		capacity: capacity,
		indexKey: keyFn,
		sink:     sink,
	}
}

// Submit merges (offset,r,g,b) into an existing entry at offset, or
// inserts a new one. On index-key collision with a different offset it
// bypasses the cache entirely and sinks straight through: the index is
// one-way (a collision never evicts the slot's current owner), so a
// write can skip the cache but never gets lost.
func (c *dedupCache) Submit(offset int, r, g, b float64) {
	key := c.indexKey(offset)
	if pos, found := c.index[key]; found {
		e := &c.entries[pos]
		if e.inUse && e.offset == offset {
			e.r += r
			e.g += g
			e.b += b
			return
		}
		// Collision: a different offset already owns this index slot.
		c.sink(offset, r, g, b)
		return
	}
	if len(c.entries) >= c.capacity {
		c.Flush()
	}
	pos := len(c.entries)
	c.entries = append(c.entries, dedupEntry{offset: offset, r: r, g: g, b: b, inUse: true})
	c.index[key] = pos
}

// Flush drains every live entry to the ring buffer in insertion order
// and resets the cache.
func (c *dedupCache) Flush() {
	for i := range c.entries {
		e := &c.entries[i]
		if !e.inUse {
			continue
		}
		c.sink(e.offset, e.r, e.g, e.b)
		key := c.indexKey(e.offset)
		if pos, found := c.index[key]; found && pos == i {
			delete(c.index, key)
		}
		e.inUse = false
	}
	c.entries = c.entries[:0]
}
