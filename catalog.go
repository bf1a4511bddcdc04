// catalog.go - Component A: memory-mapped catalog shard reader.
//
// Shards are partitioned offline by parallax-quality tier; the renderer
// opens every tier at or above the configured minimum, plus one
// optional external shard, and maps each read-only. Endianness is
// resolved once at compile time (see endian.go) and never byte-swapped
// in the hot loop.

package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

// qualityTiers lists the parallax-quality shard partition keys, highest
// quality first.
var qualityTiers = []int{100, 50, 30, 20, 10, 5, 3, 2, 1, 0}

// Shard is one memory-mapped catalog file.
type Shard struct {
	Header      ShardHeader
	data        []byte // full mmap, header included
	recordCount int64
}

// Records returns the number of 33-byte records in the shard.
func (s *Shard) Records() int64 { return s.recordCount }

// WorkerRange divides this shard's records into workerCount contiguous
// chunks by a ceil/min split: worker workerIndex gets records
// [start, start+count).
func (s *Shard) WorkerRange(workerIndex, workerCount int) (start, count int64) {
	total := s.recordCount
	if workerCount <= 0 {
		workerCount = 1
	}
	per := (total + int64(workerCount) - 1) / int64(workerCount) // ceil
	start = int64(workerIndex) * per
	if start > total {
		start = total
	}
	end := start + per
	if end > total {
		end = total
	}
	return start, end - start
}

// Record decodes the record at index i (0-based) within the shard.
func (s *Shard) Record(i int64) StarRecord {
	off := headerSize + i*recordSize
	b := s.data[off : off+recordSize]
	return decodeStarRecord(b)
}

func openShard(path string, tier int) (*Shard, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(ErrCatalog, "open shard %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, newError(ErrCatalog, "stat shard %s: %w", path, err)
	}
	length := info.Size()
	if length == 0 {
		// A zero-byte shard file is empty by convention, not malformed:
		// a header-less placeholder for a quality tier with no stars.
		return &Shard{Header: ShardHeader{Path: path, LittleEndian: hostLittleEndian, QualityTier: tier}}, nil
	}
	if length < headerSize {
		return nil, newError(ErrCatalog, "shard %s: length %d below header size", path, length)
	}
	if (length-headerSize)%recordSize != 0 {
		return nil, newError(ErrCatalog, "shard %s: length-%d not a multiple of %d after header", path, headerSize, recordSize)
	}
	if length == headerSize {
		// Valid empty shard; nothing to map.
		return &Shard{Header: ShardHeader{Path: path, LittleEndian: hostLittleEndian, QualityTier: tier}}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(length), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, newError(ErrResource, "mmap shard %s: %w", path, err)
	}

	magic := string(data[0:11])
	wantMagic := magicBE
	if hostLittleEndian {
		wantMagic = magicLE
	}
	if magic != wantMagic {
		unix.Munmap(data)
		return nil, newError(ErrCatalog, "shard %s: magic %q does not match host endianness (want %q)", path, magic, wantMagic)
	}

	recCount := (length - headerSize) / recordSize
	return &Shard{
		Header:      ShardHeader{Path: path, LittleEndian: hostLittleEndian, RecordCount: recCount, QualityTier: tier},
		data:        data,
		recordCount: recCount,
	}, nil
}

// Close unmaps the shard's backing memory, if any.
func (s *Shard) Close() error {
	if s.data == nil {
		return nil
	}
	return unix.Munmap(s.data)
}

// ShardSet is the full collection of opened shards for a render.
type ShardSet struct {
	Shards []*Shard
}

// OpenShardSet opens every tier shard at or above minQuality, plus the
// optional external shard, concurrently via errgroup: a bad magic or
// unreadable shard is treated as fatal; every open runs to completion
// and the first error is returned with no shard set.
func OpenShardSet(dir string, minQuality int, externalPath string) (*ShardSet, error) {
	var tiers []int
	for _, t := range qualityTiers {
		if t >= minQuality {
			tiers = append(tiers, t)
		}
	}

	shards := make([]*Shard, len(tiers))
	var g errgroup.Group
	for i, tier := range tiers {
		i, tier := i, tier
		g.Go(func() error {
			path := fmt.Sprintf("%s/tier_%d.bsr", dir, tier)
			sh, err := openShard(path, tier)
			if err != nil {
				return err
			}
			shards[i] = sh
			return nil
		})
	}
	var external *Shard
	if externalPath != "" {
		g.Go(func() error {
			sh, err := openShard(externalPath, -1)
			if err != nil {
				return err
			}
			external = sh
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if external != nil {
		shards = append(shards, external)
	}
	return &ShardSet{Shards: shards}, nil
}

// Close unmaps every shard in the set.
func (s *ShardSet) Close() error {
	var firstErr error
	for _, sh := range s.Shards {
		if err := sh.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// --- packed 33-byte record codec ---
//
// Layout: 8-byte source id, three 5-byte (40-bit) truncated doubles
// (x,y,z), two 3-byte (24-bit) truncated floats (intensity apparent,
// intensity dereddened), two 2-byte uints (temp apparent, temp
// dereddened). All fields host-endian (no runtime byte swap).

func decodeStarRecord(b []byte) StarRecord {
	var r StarRecord
	r.SourceID = binary.LittleEndian.Uint64(b[0:8])
	r.X = decodeTruncatedFloat64(b[8:13])
	r.Y = decodeTruncatedFloat64(b[13:18])
	r.Z = decodeTruncatedFloat64(b[18:23])
	r.IntensityApparent = decodeTruncatedFloat32(b[23:26])
	r.IntensityDereddened = decodeTruncatedFloat32(b[26:29])
	r.TempApparent = binary.LittleEndian.Uint16(b[29:31])
	r.TempDereddened = binary.LittleEndian.Uint16(b[31:33])
	return r
}

func encodeStarRecord(r StarRecord) [recordSize]byte {
	var b [recordSize]byte
	binary.LittleEndian.PutUint64(b[0:8], r.SourceID)
	copy(b[8:13], encodeTruncatedFloat64(r.X))
	copy(b[13:18], encodeTruncatedFloat64(r.Y))
	copy(b[18:23], encodeTruncatedFloat64(r.Z))
	copy(b[23:26], encodeTruncatedFloat32(r.IntensityApparent))
	copy(b[26:29], encodeTruncatedFloat32(r.IntensityDereddened))
	binary.LittleEndian.PutUint16(b[29:31], r.TempApparent)
	binary.LittleEndian.PutUint16(b[31:33], r.TempDereddened)
	return b
}

// A 40-bit truncated double keeps the sign+exponent+top mantissa bits
// of an IEEE-754 double's high 5 bytes (little-endian byte order), and
// drops the low 3 mantissa bytes. Reconstructing zero-fills them back.
func decodeTruncatedFloat64(b []byte) float64 {
	var full [8]byte
	copy(full[3:8], b)
	bits := binary.LittleEndian.Uint64(full[:])
	return math.Float64frombits(bits)
}

func encodeTruncatedFloat64(v float64) []byte {
	bits := math.Float64bits(v)
	var full [8]byte
	binary.LittleEndian.PutUint64(full[:], bits)
	out := make([]byte, 5)
	copy(out, full[3:8])
	return out
}

// A 24-bit truncated float keeps the high 3 bytes of an IEEE-754
// single, little-endian, dropping the low mantissa byte.
func decodeTruncatedFloat32(b []byte) float32 {
	var full [4]byte
	copy(full[1:4], b)
	bits := binary.LittleEndian.Uint32(full[:])
	return math.Float32frombits(bits)
}

func encodeTruncatedFloat32(v float32) []byte {
	bits := math.Float32bits(v)
	var full [4]byte
	binary.LittleEndian.PutUint32(full[:], bits)
	out := make([]byte, 3)
	copy(out, full[1:4])
	return out
}

// buildShardHeader produces a 256-byte ASCII header for the builder /
// test helpers: magic in bytes 0..10, remainder zero-padded.
func buildShardHeader(littleEndian bool) [headerSize]byte {
	var h [headerSize]byte
	magic := magicBE
	if littleEndian {
		magic = magicLE
	}
	copy(h[:], magic)
	return h
}
