// types.go - shared data types for the star-rendering pipeline.

package main

import "fmt"

// StarRecord is the decoded in-memory form of a packed 33-byte catalog
// record. X, Y, Z are heliocentric ICRS coordinates in parsecs.
// IntensityApparent/IntensityDereddened are flux at 1 parsec.
type StarRecord struct {
	SourceID             uint64
	X, Y, Z              float64
	IntensityApparent    float32
	IntensityDereddened  float32
	TempApparent         uint16
	TempDereddened       uint16
}

// recordSize is the on-disk width of one packed StarRecord.
const recordSize = 33

// headerSize is the width of the ASCII catalog header, magic included.
const headerSize = 256

const (
	magicLE = "BSRENDER_LE"
	magicBE = "BSRENDER_BE"
)

// ShardHeader describes one opened catalog shard.
type ShardHeader struct {
	Path           string
	LittleEndian   bool
	RecordCount    int64
	QualityTier    int
}

// Image is the floating-point composition buffer: width*height RGB
// triples in linear light, row-major, (r,g,b) interleaved. It is the
// single source of truth during composition and post-process.
type Image struct {
	Width, Height int
	Pix           []float64
}

// NewImage allocates a zeroed composition buffer.
func NewImage(w, h int) *Image {
	return &Image{Width: w, Height: h, Pix: make([]float64, w*h*3)}
}

func (img *Image) offset(x, y int) int { return (y*img.Width + x) * 3 }

// At returns the (r,g,b) triple at pixel (x,y).
func (img *Image) At(x, y int) (r, g, b float64) {
	o := img.offset(x, y)
	return img.Pix[o], img.Pix[o+1], img.Pix[o+2]
}

// AddAt adds (r,g,b) to the pixel at the given flat image offset
// (offset is in pixels, not floats — offset*3 indexes Pix).
func (img *Image) AddAt(pixelOffset int, r, g, b float64) {
	o := pixelOffset * 3
	img.Pix[o] += r
	img.Pix[o+1] += g
	img.Pix[o+2] += b
}

// SetAt overwrites the pixel at the given flat image offset.
func (img *Image) SetAt(pixelOffset int, r, g, b float64) {
	o := pixelOffset * 3
	img.Pix[o] = r
	img.Pix[o+1] = g
	img.Pix[o+2] = b
}

// InBounds reports whether integer pixel (x,y) lies inside the image.
func (img *Image) InBounds(x, y int) bool {
	return x >= 0 && x < img.Width && y >= 0 && y < img.Height
}

// ByteImage is the encoded output buffer: bytesPerColor-wide samples,
// channel order and endianness as selected by the pixel sequencer,
// plus row pointers so encoders that want them can consume the buffer
// directly without a copy.
type ByteImage struct {
	Width, Height  int
	BytesPerColor  int
	Channels       int
	Buf            []byte
	RowPointers    [][]byte
}

// NewByteImage allocates an output buffer and slices its row pointers.
func NewByteImage(w, h, bytesPerColor, channels int) *ByteImage {
	stride := w * channels * bytesPerColor
	bi := &ByteImage{
		Width:         w,
		Height:        h,
		BytesPerColor: bytesPerColor,
		Channels:      channels,
		Buf:           make([]byte, stride*h),
	}
	bi.RowPointers = make([][]byte, h)
	for y := 0; y < h; y++ {
		bi.RowPointers[y] = bi.Buf[y*stride : (y+1)*stride]
	}
	return bi
}

// ErrorKind classifies a RenderError per the fatal/non-fatal taxonomy.
type ErrorKind int

const (
	ErrConfig ErrorKind = iota
	ErrCatalog
	ErrResource
	ErrWorker
	ErrOutput
)

func (k ErrorKind) String() string {
	switch k {
	case ErrConfig:
		return "config"
	case ErrCatalog:
		return "catalog"
	case ErrResource:
		return "resource"
	case ErrWorker:
		return "worker"
	case ErrOutput:
		return "output"
	default:
		return "unknown"
	}
}

// RenderError wraps an underlying error with a kind taxonomy so CLI
// and CGI front ends can map it to an exit code or an HTTP-style
// status line respectively.
type RenderError struct {
	Kind ErrorKind
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func newError(kind ErrorKind, format string, args ...any) *RenderError {
	return &RenderError{Kind: kind, Err: fmt.Errorf(format, args...)}
}
