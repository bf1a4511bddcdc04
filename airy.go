// airy.go - Airy splatter / anti-alias footprint expansion.
//
// Expands one in-bounds star into either a single pixel, an
// anti-aliased 2x2-ish spread, or a mirrored Airy-map footprint,
// submitting each contributing pixel through submit (normally a
// worker's dedupCache.Submit).

package main

import "math"

// Submitter receives a weighted (r,g,b) contribution at an integer
// pixel offset. Workers pass dedupCache.Submit; tests can pass a plain
// recorder.
type Submitter func(offset int, r, g, b float64)

// SplatStar expands one star's contribution at floating-point raster
// position (u,v) and writes it through submit. color is color[T] for
// the star's temperature; linearIntensity is flux_1pc/r^2.
func SplatStar(img *Image, u, v, linearIntensity float64, color RGB, cfg *Config, airyMaps *AiryMaps, submit Submitter) {
	rgb := RGB{R: color.R * linearIntensity, G: color.G * linearIntensity, B: color.B * linearIntensity}

	switch {
	case cfg.AiryDiskEnable && airyMaps != nil:
		splatAiry(img, u, v, linearIntensity, rgb, cfg, airyMaps, submit)
	case cfg.AntiAliasEnable:
		splatAntiAlias(img, u, v, rgb, cfg.AntiAliasRadius, submit)
	default:
		splatSinglePixel(img, u, v, rgb, submit)
	}
}

func splatSinglePixel(img *Image, u, v float64, rgb RGB, submit Submitter) {
	x, y := int(math.Floor(u)), int(math.Floor(v))
	if !img.InBounds(x, y) {
		return
	}
	submit(y*img.Width+x, rgb.R, rgb.G, rgb.B)
}

// splatAntiAlias spreads rgb over the square of half-width radius
// (clamped to [0.5,2.0]) centered at (u,v); each overlapped pixel's
// weight is (x_overlap*y_overlap)/(2*radius)^2.
func splatAntiAlias(img *Image, u, v float64, rgb RGB, radius float64, submit Submitter) {
	r := radius
	if r < 0.5 {
		r = 0.5
	}
	if r > 2.0 {
		r = 2.0
	}
	area := (2 * r) * (2 * r)

	x0 := int(math.Floor(u - r))
	x1 := int(math.Floor(u + r))
	y0 := int(math.Floor(v - r))
	y1 := int(math.Floor(v + r))

	for y := y0; y <= y1; y++ {
		yOverlap := overlap1D(v-r, v+r, float64(y), float64(y+1))
		if yOverlap <= 0 {
			continue
		}
		for x := x0; x <= x1; x++ {
			xOverlap := overlap1D(u-r, u+r, float64(x), float64(x+1))
			if xOverlap <= 0 {
				continue
			}
			if !img.InBounds(x, y) {
				continue
			}
			w := (xOverlap * yOverlap) / area
			submit(y*img.Width+x, rgb.R*w, rgb.G*w, rgb.B*w)
		}
	}
}

func overlap1D(a0, a1, b0, b1 float64) float64 {
	lo := math.Max(a0, b0)
	hi := math.Min(a1, b1)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// splatAiry chooses a per-star footprint extent, walks the Airy map
// quadrant and mirrors into the other three, submitting each footprint
// pixel's contribution (through anti-alias if enabled, else directly).
func splatAiry(img *Image, u, v, linearIntensity float64, rgb RGB, cfg *Config, am *AiryMaps, submit Submitter) {
	limit := math.Pow(100, -cfg.CameraPixelLimitMag/5)
	if limit <= 0 {
		limit = 1
	}
	extent := math.Sqrt(10*linearIntensity/limit) * 2 * cfg.AiryDiskFirstNullPixels
	if extent < float64(cfg.AiryDiskMinExtent) {
		extent = float64(cfg.AiryDiskMinExtent)
	}
	if extent > float64(cfg.AiryDiskMaxExtent) {
		extent = float64(cfg.AiryDiskMaxExtent)
	}
	intExtent := int(math.Ceil(extent))
	if intExtent > am.MaxExtent {
		intExtent = am.MaxExtent
	}

	cx := int(math.Floor(u))
	cy := int(math.Floor(v))

	for dy := -intExtent; dy <= intExtent; dy++ {
		for dx := -intExtent; dx <= intExtent; dx++ {
			px, py := cx+dx, cy+dy
			if !img.InBounds(px, py) {
				continue
			}
			mr := am.Lookup(0, dx, dy)
			mg := am.Lookup(1, dx, dy)
			mb := am.Lookup(2, dx, dy)
			if mr == 0 && mg == 0 && mb == 0 {
				continue
			}
			contrib := RGB{R: rgb.R * mr, G: rgb.G * mg, B: rgb.B * mb}
			if cfg.AntiAliasEnable {
				splatAntiAlias(img, float64(px)+0.5, float64(py)+0.5, contrib, cfg.AntiAliasRadius, submit)
			} else {
				submit(py*img.Width+px, contrib.R, contrib.G, contrib.B)
			}
		}
	}
}
