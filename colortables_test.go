package main

import (
	"math"
	"testing"
)

func TestRGBTableNoNaNOrNegative(t *testing.T) {
	bands := defaultCameraBands()
	table := BuildRGBTable(bands, defaultGaiaGBand(), true, 5800, 1.0)
	if len(table) != maxTemperature+1 {
		t.Fatalf("table length = %d, want %d", len(table), maxTemperature+1)
	}
	for _, temps := range []int{0, 3000, 5800, 10000, 32767} {
		c := table[temps]
		for _, v := range []float64{c.R, c.G, c.B} {
			if math.IsNaN(v) || v < 0 {
				t.Errorf("temperature %d: invalid channel value %v", temps, v)
			}
		}
	}
}

func TestBandpassRatioTableFinite(t *testing.T) {
	table := BuildBandpassRatioTable(defaultGaiaGBand(), defaultGaiaBPBand(), defaultGaiaRPBand())
	for _, temps := range []int{100, 5800, 20000} {
		r := table[temps]
		if math.IsNaN(r.RPG) || math.IsNaN(r.BPG) || math.IsNaN(r.BPRP) {
			t.Errorf("temperature %d: NaN bandpass ratio", temps)
		}
	}
}

func TestAiryMapCenterIsPeak(t *testing.T) {
	am := BuildAiryMaps(2.0, 6, 4, 0)
	center := am.Lookup(1, 0, 0)
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if am.Lookup(1, dx, dy) > center {
				t.Errorf("Airy map should peak at the center: (%d,%d)=%v > center=%v", dx, dy, am.Lookup(1, dx, dy), center)
			}
		}
	}
}

func TestAiryMapRedWiderThanBlue(t *testing.T) {
	am := BuildAiryMaps(4.0, 12, 4, 0)
	if am.PixelScale[0] <= am.PixelScale[1] {
		t.Errorf("red first-null radius %v should exceed green's %v", am.PixelScale[0], am.PixelScale[1])
	}
	if am.PixelScale[1] <= am.PixelScale[2] {
		t.Errorf("green first-null radius %v should exceed blue's %v", am.PixelScale[1], am.PixelScale[2])
	}

	// The Airy pattern is nonzero out to MaxExtent in every channel, so
	// width is measured by where the profile along +x first stops falling
	// (the first dark ring).
	firstDarkRing := func(c int) int {
		for d := 0; d < am.MaxExtent; d++ {
			if am.Lookup(c, d+1, 0) > am.Lookup(c, d, 0) {
				return d
			}
		}
		return am.MaxExtent
	}
	red, blue := firstDarkRing(0), firstDarkRing(2)
	if red <= blue {
		t.Errorf("red channel's first dark ring (%d) should lie farther out than blue's (%d)", red, blue)
	}
}

func TestAiryMapZeroBeyondMaxExtent(t *testing.T) {
	am := BuildAiryMaps(1.0, 3, 2, 0)
	if v := am.Lookup(0, 10, 10); v != 0 {
		t.Errorf("lookup beyond MaxExtent should be 0, got %v", v)
	}
}
