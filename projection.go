// projection.go - rotated 3-vector to raster coordinates.
//
// ppr ("pixels per radian") is the common scale factor derived from
// resolution and field of view; each projection documents its own
// valid-pixel band.

package main

import "math"

const (
	ProjectionEquirectangular = 0
	ProjectionSpherical       = 1
	ProjectionHammer          = 2
	ProjectionMollweide       = 3
)

const (
	SphericalFrontCentered = 0
	SphericalSideBySide    = 1
)

// Projector carries the precomputed scale and frame geometry shared by
// every per-star projection call.
type Projector struct {
	Kind                 int
	Width, Height        int
	PPR                  float64 // pixels per radian, set by camera_fov
	SphericalOrientation int
	MollweideIterations  int
}

// NewProjector derives ppr from the horizontal field of view: the full
// width spans fovRad radians for equirectangular/Hammer/Mollweide, pi
// radians (a full disk diameter) for front-centered spherical, and 2*pi
// radians (two disks) for side-by-side spherical.
func NewProjector(kind, width, height int, fovDeg float64, sphOrient, mollIter int) *Projector {
	fovRad := degToRad(fovDeg)
	var ppr float64
	switch kind {
	case ProjectionSpherical:
		ppr = float64(width) / math.Pi
		if sphOrient == SphericalSideBySide {
			ppr = float64(width) / (2 * math.Pi)
		}
	default:
		ppr = float64(width) / fovRad
	}
	return &Projector{
		Kind: kind, Width: width, Height: height, PPR: ppr,
		SphericalOrientation: sphOrient, MollweideIterations: mollIter,
	}
}

// Project maps a camera-frame vector to floating point raster (u,v).
// ok is false if the point falls outside the projection's valid band.
func (p *Projector) Project(v Vec3) (u, v2 float64, ok bool) {
	switch p.Kind {
	case ProjectionEquirectangular:
		return p.projectEquirect(v)
	case ProjectionSpherical:
		return p.projectSpherical(v)
	case ProjectionHammer:
		return p.projectHammer(v)
	case ProjectionMollweide:
		return p.projectMollweide(v)
	default:
		return 0, 0, false
	}
}

func (p *Projector) projectEquirect(v Vec3) (float64, float64, bool) {
	az := math.Atan2(v.Y, v.X)
	el := math.Atan2(v.Z, math.Hypot(v.X, v.Y))
	cx, cy := float64(p.Width)/2, float64(p.Height)/2
	u := -p.PPR*az + cx
	vv := -p.PPR*el + cy
	ok := math.Abs(u-cx) <= math.Pi*p.PPR && math.Abs(vv-cy) <= (math.Pi/2)*p.PPR
	return u, vv, ok
}

func (p *Projector) projectSpherical(v Vec3) (float64, float64, bool) {
	alpha := math.Atan2(math.Hypot(v.Y, v.Z), math.Abs(v.X))
	phi := math.Atan2(v.Z, v.Y)
	r := alpha * p.PPR
	cx, cy := float64(p.Width)/2, float64(p.Height)/2

	if p.SphericalOrientation == SphericalSideBySide {
		lobeCx := cx / 2
		if v.X < 0 {
			lobeCx = cx + cx/2
		}
		u := lobeCx + r*math.Cos(phi)
		vv := cy - r*math.Sin(phi)
		ok := r <= (math.Pi/2)*p.PPR
		return u, vv, ok
	}

	// Front-centered: back hemisphere folds into two side lobes on a
	// frame pi radians wide, front hemisphere fills the center disk.
	u := cx + r*math.Cos(phi)
	vv := cy - r*math.Sin(phi)
	if v.X < 0 {
		if math.Cos(phi) >= 0 {
			u = float64(p.Width) - (cx - r*math.Cos(phi))
		} else {
			u = -(cx + r*math.Cos(phi))
		}
	}
	ok := r <= (math.Pi/2)*p.PPR
	return u, vv, ok
}

func (p *Projector) projectHammer(v Vec3) (float64, float64, bool) {
	az := math.Atan2(v.Y, v.X)
	el := math.Atan2(v.Z, math.Hypot(v.X, v.Y))
	denom := math.Sqrt(1 + math.Cos(el)*math.Cos(az/2))
	if denom == 0 {
		return 0, 0, false
	}
	x := (math.Sqrt2 * math.Cos(el) * math.Sin(az/2)) / denom
	y := (math.Sqrt2 * math.Sin(el)) / denom
	cx, cy := float64(p.Width)/2, float64(p.Height)/2
	u := cx - x*p.PPR*math.Pi/math.Sqrt2
	vv := cy - y*p.PPR*(math.Pi/2)/math.Sqrt2
	dx := (u - cx) / (math.Pi * p.PPR)
	dy := (vv - cy) / ((math.Pi / 2) * p.PPR)
	ok := dx*dx+dy*dy <= 1.0
	return u, vv, ok
}

func (p *Projector) projectMollweide(v Vec3) (float64, float64, bool) {
	az := math.Atan2(v.Y, v.X)
	el := math.Atan2(v.Z, math.Hypot(v.X, v.Y))

	theta := el
	for i := 0; i < p.MollweideIterations; i++ {
		theta -= (2*theta + math.Sin(2*theta) - math.Pi*math.Sin(el)) / (2 + 2*math.Cos(2*theta))
	}

	x := (2 * math.Sqrt2 / math.Pi) * az * math.Cos(theta)
	y := math.Sqrt2 * math.Sin(theta)
	cx, cy := float64(p.Width)/2, float64(p.Height)/2
	u := cx + x*p.PPR*math.Pi/(2*math.Sqrt2)
	vv := cy - y*p.PPR*(math.Pi/2)/math.Sqrt2
	dx := (u - cx) / (math.Pi * p.PPR)
	dy := (vv - cy) / ((math.Pi / 2) * p.PPR)
	ok := dx*dx+dy*dy <= 1.0
	return u, vv, ok
}
