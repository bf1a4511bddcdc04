// encoders.go - output format interface and the non-EXR encoders.
//
// PNG and JPEG are thin wrappers over the standard library's image/png
// and image/jpeg, not a hand-rolled byte layout. HEIF/AVIF have no
// available encoder here, so they are stubs returning a clear
// "unsupported encoder" OutputError.

package main

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
)

// Encoder writes a ByteImage to w in one output format.
type Encoder interface {
	Encode(w io.Writer, img *ByteImage, cfg *Config) error
}

// byteImageToGoImage adapts a ByteImage produced with 8-bit interleaved
// RGB samples to a standard library image.Image the stdlib encoders can
// consume directly.
func byteImageToGoImage(bi *ByteImage) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, bi.Width, bi.Height))
	for y := 0; y < bi.Height; y++ {
		row := bi.RowPointers[y]
		for x := 0; x < bi.Width; x++ {
			o := x * bi.Channels * bi.BytesPerColor
			out.SetRGBA(x, y, color.RGBA{R: row[o], G: row[o+1], B: row[o+2], A: 255})
		}
	}
	return out
}

// PNGEncoder emits PNG via the standard library.
type PNGEncoder struct{}

func (PNGEncoder) Encode(w io.Writer, bi *ByteImage, cfg *Config) error {
	if err := png.Encode(w, byteImageToGoImage(bi)); err != nil {
		return newError(ErrOutput, "png encode: %w", err)
	}
	return nil
}

// JPEGEncoder emits JPEG via the standard library, at the configured
// quality.
type JPEGEncoder struct{}

func (JPEGEncoder) Encode(w io.Writer, bi *ByteImage, cfg *Config) error {
	q := cfg.JPEGQuality
	if q <= 0 {
		q = 90
	}
	if err := jpeg.Encode(w, byteImageToGoImage(bi), &jpeg.Options{Quality: q}); err != nil {
		return newError(ErrOutput, "jpeg encode: %w", err)
	}
	return nil
}

// EXREncoder adapts WriteEXR to the Encoder interface by re-deriving a
// linear-light Image from the already-sequenced ByteImage is wasteful;
// main.go and cgi.go call WriteEXR directly on the float Image instead. This
// type exists only to satisfy callers that select an encoder generically
// and always errors, steering them to the direct path.
type EXREncoder struct{}

func (EXREncoder) Encode(w io.Writer, bi *ByteImage, cfg *Config) error {
	return newError(ErrOutput, "EXR output must go through WriteEXR on the linear-light image, not the Encoder interface")
}

// HEIFEncoder is a stub: no standard-library or pack-provided HEIF
// encoder exists, so HEIF output is an explicit unsupported error
// rather than a silent no-op.
type HEIFEncoder struct{}

func (HEIFEncoder) Encode(w io.Writer, bi *ByteImage, cfg *Config) error {
	return newError(ErrOutput, "HEIF encoding is not supported by this build")
}

// AVIFEncoder is a stub for the same reason as HEIFEncoder.
type AVIFEncoder struct{}

func (AVIFEncoder) Encode(w io.Writer, bi *ByteImage, cfg *Config) error {
	return newError(ErrOutput, "AVIF encoding is not supported by this build")
}

// SelectEncoder maps a configured image_format string to its Encoder.
func SelectEncoder(format string) (Encoder, error) {
	switch format {
	case "png":
		return PNGEncoder{}, nil
	case "jpeg", "jpg":
		return JPEGEncoder{}, nil
	case "heif":
		return HEIFEncoder{}, nil
	case "avif":
		return AVIFEncoder{}, nil
	case "exr":
		return EXREncoder{}, nil
	default:
		return nil, newError(ErrOutput, "unrecognized image_format %q", format)
	}
}
