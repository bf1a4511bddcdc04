package main

import (
	"math"
	"testing"
)

func TestGaussianKernelSumsToOne(t *testing.T) {
	for _, r := range []float64{0.5, 1.0, 2.5, 5.0} {
		k := GaussianKernel1D(r)
		sum := 0.0
		for _, v := range k {
			sum += v
		}
		if math.Abs(sum-1.0) > 1e-12 {
			t.Errorf("radius %v: kernel sums to %v, want 1.0", r, sum)
		}
	}
}

func TestGaussianBlurImpulseIsSeparable(t *testing.T) {
	img := NewImage(9, 9)
	img.SetAt(4*9+4, 1, 1, 1)

	if err := GaussianBlur(img, 1.0, 1); err != nil {
		t.Fatalf("blur error: %v", err)
	}

	k := GaussianKernel1D(1.0)
	half := len(k) / 2
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			x, y := 4+dx, 4+dy
			if x < 0 || x >= 9 || y < 0 || y >= 9 {
				continue
			}
			var want float64
			if ki, kj := dx+half, dy+half; ki >= 0 && ki < len(k) && kj >= 0 && kj < len(k) {
				want = k[ki] * k[kj]
			}
			r, _, _ := img.At(x, y)
			if math.Abs(r-want) > 1e-9 {
				t.Errorf("pixel (%d,%d): got %v want ~%v", x, y, r, want)
			}
		}
	}
}

func TestToneLimitClampsAndNeverNegative(t *testing.T) {
	img := NewImage(2, 1)
	img.SetAt(0, 2.0, -1.0, math.NaN())
	img.SetAt(1, 0.5, 0.5, 0.5)

	ToneLimit(img, 0, 1.0, 0)

	for i := 0; i < len(img.Pix); i++ {
		if img.Pix[i] < 0 || img.Pix[i] > 1 || math.IsNaN(img.Pix[i]) {
			t.Errorf("pixel value out of [0,1] or NaN after tone limit: %v", img.Pix[i])
		}
	}
}

func TestLanczosResizeConstantImage(t *testing.T) {
	img := NewImage(4, 4)
	for i := 0; i < len(img.Pix); i++ {
		img.Pix[i] = 0.5
	}
	out, err := LanczosResize(img, 2.0, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	for y := 1; y < out.Height-1; y++ {
		for x := 1; x < out.Width-1; x++ {
			r, g, b := out.At(x, y)
			if math.Abs(r-0.5) > 1e-6 || math.Abs(g-0.5) > 1e-6 || math.Abs(b-0.5) > 1e-6 {
				t.Errorf("upsampling a constant image should return the same constant, interior pixel (%d,%d)=(%v,%v,%v)", x, y, r, g, b)
			}
		}
	}
}

func TestLanczosResizeIdentityScale(t *testing.T) {
	img := NewImage(3, 3)
	img.SetAt(4, 1, 2, 3)
	out, err := LanczosResize(img, 1.0, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if out != img {
		t.Error("scale 1.0 should be a no-op returning the same image")
	}
}

func TestOverlayIdempotenceWhenDisabled(t *testing.T) {
	img := NewImage(8, 8)
	for i := range img.Pix {
		img.Pix[i] = float64(i) * 0.001
	}
	before := append([]float64(nil), img.Pix...)

	ApplyOverlays(img, OverlayConfig{Crosshair: false, Grid: false})

	for i := range img.Pix {
		if img.Pix[i] != before[i] {
			t.Fatalf("overlay stage with everything disabled must leave the buffer untouched, pixel %d changed", i)
		}
	}
}
