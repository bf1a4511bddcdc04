// cmd/bsrshard reports a catalog shard's header and record count, and
// optionally dumps the first few decoded records. Uses the same
// flag-based CLI pattern as the renderer's own main command.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"os"
)

const (
	headerSize = 256
	recordSize = 33
)

func main() {
	dump := flag.Int("dump", 0, "decode and print the first N records")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bsrshard [options] shard-file\n\nInspects a bsrender catalog shard.\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if len(data) < headerSize {
		fmt.Fprintf(os.Stderr, "error: %s is shorter than the %d-byte header\n", path, headerSize)
		os.Exit(1)
	}
	magic := string(data[:11])
	fmt.Printf("shard:        %s\n", path)
	fmt.Printf("magic:        %q\n", magic)
	fmt.Printf("size:         %d bytes\n", len(data))

	if (len(data)-headerSize)%recordSize != 0 {
		fmt.Fprintf(os.Stderr, "error: payload length %d is not a multiple of %d\n", len(data)-headerSize, recordSize)
		os.Exit(1)
	}
	count := (len(data) - headerSize) / recordSize
	fmt.Printf("records:      %d\n", count)

	if *dump <= 0 {
		return
	}
	n := *dump
	if n > count {
		n = count
	}
	for i := 0; i < n; i++ {
		off := headerSize + i*recordSize
		rec := decodeRecord(data[off : off+recordSize])
		fmt.Printf("[%d] id=%d x=%.4f y=%.4f z=%.4f Iapp=%.6g Ider=%.6g Tapp=%d Tder=%d\n",
			i, rec.sourceID, rec.x, rec.y, rec.z, rec.iApp, rec.iDer, rec.tApp, rec.tDer)
	}
}

type record struct {
	sourceID   uint64
	x, y, z    float64
	iApp, iDer float32
	tApp, tDer uint16
}

func decodeRecord(b []byte) record {
	var r record
	r.sourceID = binary.LittleEndian.Uint64(b[0:8])
	r.x = decodeTruncated64(b[8:13])
	r.y = decodeTruncated64(b[13:18])
	r.z = decodeTruncated64(b[18:23])
	r.iApp = decodeTruncated32(b[23:26])
	r.iDer = decodeTruncated32(b[26:29])
	r.tApp = binary.LittleEndian.Uint16(b[29:31])
	r.tDer = binary.LittleEndian.Uint16(b[31:33])
	return r
}

func decodeTruncated64(b []byte) float64 {
	var full [8]byte
	copy(full[3:8], b)
	return math.Float64frombits(binary.LittleEndian.Uint64(full[:]))
}

func decodeTruncated32(b []byte) float32 {
	var full [4]byte
	copy(full[1:4], b)
	return math.Float32frombits(binary.LittleEndian.Uint32(full[:]))
}
