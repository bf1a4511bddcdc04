// overlay.go - overlay sub-stage: crosshairs and grid.
//
// Uses golang.org/x/image/vector.Rasterizer: lines are rasterized into
// an 8-bit alpha mask once, then the main thread blends that mask into
// the linear-light composition buffer.

package main

import (
	"image"

	"golang.org/x/image/vector"
)

// OverlayConfig selects which fixed-position overlays to draw.
type OverlayConfig struct {
	Crosshair bool
	Grid      bool
	GridLines int // divisions per axis: GridLines-1 evenly spaced interior lines
	Color     RGB
}

const overlayLineWidth = 1.0 // px

// ApplyOverlays rasterizes the configured overlay lines and additively
// blends them into img. Called with every overlay disabled, it leaves
// img untouched.
func ApplyOverlays(img *Image, cfg OverlayConfig) {
	if !cfg.Crosshair && !cfg.Grid {
		return
	}
	r := vector.NewRasterizer(img.Width, img.Height)

	if cfg.Crosshair {
		drawCrosshair(r, img.Width, img.Height)
	}
	if cfg.Grid {
		drawGrid(r, img.Width, img.Height, cfg.GridLines)
	}

	mask := image.NewAlpha(image.Rect(0, 0, img.Width, img.Height))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			a := float64(mask.AlphaAt(x, y).A) / 255
			if a == 0 {
				continue
			}
			o := img.offset(x, y)
			img.Pix[o] += a * cfg.Color.R
			img.Pix[o+1] += a * cfg.Color.G
			img.Pix[o+2] += a * cfg.Color.B
		}
	}
}

// rectPath emits a closed thin rectangle as a stand-in "line" from
// (x0,y0) to (x1,y1), since vector.Rasterizer fills closed paths rather
// than stroking open ones.
func rectPath(r *vector.Rasterizer, x0, y0, x1, y1, width float32) {
	if x0 == x1 { // vertical
		half := width / 2
		r.MoveTo(x0-half, y0)
		r.LineTo(x0+half, y0)
		r.LineTo(x1+half, y1)
		r.LineTo(x1-half, y1)
		r.ClosePath()
		return
	}
	half := width / 2
	r.MoveTo(x0, y0-half)
	r.LineTo(x1, y1-half)
	r.LineTo(x1, y1+half)
	r.LineTo(x0, y0+half)
	r.ClosePath()
}

func drawCrosshair(r *vector.Rasterizer, w, h int) {
	cx, cy := float32(w)/2, float32(h)/2
	halfLen := float32(w) / 40
	if halfLen < 2 {
		halfLen = 2
	}
	rectPath(r, cx-halfLen, cy, cx+halfLen, cy, overlayLineWidth)
	rectPath(r, cx, cy-halfLen, cx, cy+halfLen, overlayLineWidth)
}

func drawGrid(r *vector.Rasterizer, w, h, lines int) {
	if lines < 1 {
		lines = 4
	}
	for i := 1; i < lines; i++ {
		x := float32(w) * float32(i) / float32(lines)
		rectPath(r, x, 0, x, float32(h), overlayLineWidth)
	}
	for i := 1; i < lines; i++ {
		y := float32(h) * float32(i) / float32(lines)
		rectPath(r, 0, y, float32(w), y, overlayLineWidth)
	}
}
