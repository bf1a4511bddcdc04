// postprocess.go - tone limit, separable Gaussian blur, log-space
// Lanczos resize. Row-range fan-out uses errgroup.Group, one goroutine
// per worker over a contiguous row range.

package main

import (
	"math"

	"golang.org/x/sync/errgroup"
)

// ToneLimit divides every pixel by camera_pixel_limit, applies gamma,
// then clamps to [0,1] either per-channel (mode 0) or hue-preserving by
// scaling by the max channel when any channel exceeds 1 (mode 1).
// NaN/Inf are clamped here so they never reach the encoder.
func ToneLimit(img *Image, limitMag, gamma float64, mode int) {
	limit := math.Pow(100, -limitMag/5)
	if limit <= 0 {
		limit = 1
	}
	for i := 0; i < len(img.Pix); i += 3 {
		r := toneOne(img.Pix[i]/limit, gamma)
		g := toneOne(img.Pix[i+1]/limit, gamma)
		b := toneOne(img.Pix[i+2]/limit, gamma)

		if mode == 1 {
			m := math.Max(r, math.Max(g, b))
			if m > 1 {
				r, g, b = r/m, g/m, b/m
			}
		} else {
			r = clamp01(r)
			g = clamp01(g)
			b = clamp01(b)
		}
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, b
	}
}

func toneOne(v, gamma float64) float64 {
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	if math.IsInf(v, 1) {
		v = 1
	}
	if gamma != 1.0 && v > 0 {
		v = math.Pow(v, 1/gamma)
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// GaussianKernel1D builds the normalized, separable 1-D kernel of
// sample size 6*ceil(r)+1.
func GaussianKernel1D(radius float64) []float64 {
	half := int(math.Ceil(radius))
	size := 6*half + 1
	k := make([]float64, size)
	sum := 0.0
	center := size / 2
	for i := 0; i < size; i++ {
		d := float64(i - center)
		v := math.Exp(-(d*d)/(2*radius*radius)) / math.Sqrt(2*math.Pi*radius*radius)
		k[i] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// GaussianBlur runs the two-pass separable blur: horizontal into a
// scratch buffer, then vertical back into img, with row ranges
// partitioned across workerCount goroutines for each pass.
func GaussianBlur(img *Image, radius float64, workerCount int) error {
	if radius <= 0 {
		return nil
	}
	kernel := GaussianKernel1D(radius)
	half := len(kernel) / 2

	scratch := NewImage(img.Width, img.Height)
	if err := runRows(img.Height, workerCount, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			blurRowHorizontal(img, scratch, y, kernel, half)
		}
		return nil
	}); err != nil {
		return err
	}

	if err := runRows(img.Height, workerCount, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			blurRowVertical(scratch, img, y, kernel, half)
		}
		return nil
	}); err != nil {
		return err
	}
	return nil
}

func blurRowHorizontal(src, dst *Image, y int, kernel []float64, half int) {
	for x := 0; x < src.Width; x++ {
		var r, g, b float64
		for k, w := range kernel {
			sx := x + k - half
			if sx < 0 {
				sx = 0
			}
			if sx >= src.Width {
				sx = src.Width - 1
			}
			sr, sg, sb := src.At(sx, y)
			r += sr * w
			g += sg * w
			b += sb * w
		}
		dst.SetAt(y*dst.Width+x, r, g, b)
	}
}

func blurRowVertical(src, dst *Image, y int, kernel []float64, half int) {
	for x := 0; x < src.Width; x++ {
		var r, g, b float64
		for k, w := range kernel {
			sy := y + k - half
			if sy < 0 {
				sy = 0
			}
			if sy >= src.Height {
				sy = src.Height - 1
			}
			sr, sg, sb := src.At(x, sy)
			r += sr * w
			g += sg * w
			b += sb * w
		}
		dst.SetAt(y*dst.Width+x, r, g, b)
	}
}

// lanczosKernel evaluates L(x) for the configured Lanczos order a.
func lanczosKernel(x float64, a int) float64 {
	if x == 0 {
		return 1
	}
	af := float64(a)
	if math.Abs(x) >= af {
		return 0
	}
	px := math.Pi * x
	return af * math.Sin(px) * math.Sin(px/af) / (px * px)
}

const lanczosLogOffset = 1e-6

// LanczosResize rescales img by factor scale using 2-D Lanczos
// resampling in log space: each pixel is log-transformed before
// filtering and exponentiated back afterward, with a small additive
// offset to avoid log(0). Row ranges are partitioned across
// workerCount goroutines.
func LanczosResize(img *Image, scale float64, order, workerCount int) (*Image, error) {
	if scale == 1.0 {
		return img, nil
	}
	newW := int(math.Round(float64(img.Width) * scale))
	newH := int(math.Round(float64(img.Height) * scale))
	out := NewImage(newW, newH)

	err := runRows(newH, workerCount, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			srcY := (float64(y)+0.5)/scale - 0.5
			for x := 0; x < newW; x++ {
				srcX := (float64(x)+0.5)/scale - 0.5
				r, g, b := lanczosSample(img, srcX, srcY, order)
				out.SetAt(y*newW+x, r, g, b)
			}
		}
		return nil
	})
	return out, err
}

func lanczosSample(img *Image, srcX, srcY float64, a int) (float64, float64, float64) {
	x0 := int(math.Floor(srcX)) - a + 1
	x1 := int(math.Floor(srcX)) + a
	y0 := int(math.Floor(srcY)) - a + 1
	y1 := int(math.Floor(srcY)) + a

	var r, g, b, wsum float64
	for y := y0; y <= y1; y++ {
		wy := lanczosKernel(srcY-float64(y), a)
		if wy == 0 {
			continue
		}
		cy := clampInt(y, 0, img.Height-1)
		for x := x0; x <= x1; x++ {
			wx := lanczosKernel(srcX-float64(x), a)
			if wx == 0 {
				continue
			}
			cx := clampInt(x, 0, img.Width-1)
			pr, pg, pb := img.At(cx, cy)
			w := wx * wy
			r += math.Log(pr+lanczosLogOffset) * w
			g += math.Log(pg+lanczosLogOffset) * w
			b += math.Log(pb+lanczosLogOffset) * w
			wsum += w
		}
	}
	if wsum == 0 {
		wsum = 1
	}
	r = math.Exp(r/wsum) - lanczosLogOffset
	g = math.Exp(g/wsum) - lanczosLogOffset
	b = math.Exp(b/wsum) - lanczosLogOffset
	return negClamp(r), negClamp(g), negClamp(b)
}

func negClamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// runRows fans a [0,rows) range out across workerCount goroutines via
// errgroup, each handling a contiguous sub-range.
func runRows(rows, workerCount int, fn func(y0, y1 int) error) error {
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > rows {
		workerCount = rows
	}
	if workerCount <= 1 {
		return fn(0, rows)
	}
	per := (rows + workerCount - 1) / workerCount
	var g errgroup.Group
	for w := 0; w < workerCount; w++ {
		y0 := w * per
		y1 := y0 + per
		if y1 > rows {
			y1 = rows
		}
		if y0 >= y1 {
			continue
		}
		g.Go(func() error { return fn(y0, y1) })
	}
	return g.Wait()
}
