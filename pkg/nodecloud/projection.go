package nodecloud

import "math"

// minDepthGap keeps f/(f-z) finite when a point sits on the focal plane
const minDepthGap = 1e-6

// Viewport is the host region the cloud renders into, in CSS pixels
type Viewport struct {
	Width  float64
	Height float64
}

// Valid reports whether the viewport has a usable, finite area
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0 && finite(v.Width) && finite(v.Height)
}

// Center returns the projection origin
func (v Viewport) Center() (cx, cy float64) {
	return v.Width / 2, v.Height / 2
}

// Rotation is an orientation as pitch (about the horizontal axis) and yaw
// (about the vertical axis), in radians
type Rotation struct {
	Pitch float64
	Yaw   float64
}

// rotator caches the trig terms of one orientation for a whole frame
type rotator struct {
	sinX, cosX float64
	sinY, cosY float64
}

func newRotator(r Rotation) rotator {
	return rotator{
		sinX: math.Sin(r.Pitch),
		cosX: math.Cos(r.Pitch),
		sinY: math.Sin(r.Yaw),
		cosY: math.Cos(r.Yaw),
	}
}

// apply rotates by yaw, then pitch. p is not modified.
func (r rotator) apply(p Point3D) Point3D {
	x := p.X*r.cosY - p.Z*r.sinY
	z := p.Z*r.cosY + p.X*r.sinY
	y := p.Y*r.cosX - z*r.sinX
	z = z*r.cosX + p.Y*r.sinX
	return Point3D{X: x, Y: y, Z: z}
}

// Rotate applies the orientation to a point and returns the rotated copy
func Rotate(p Point3D, r Rotation) Point3D {
	return newRotator(r).apply(p)
}

// Project maps a rotated point to screen space with a pinhole camera at
// distance focal from the origin, looking down -Z.
func Project(p Point3D, focal float64, vp Viewport) (sx, sy, scale float64) {
	denom := focal - p.Z
	if math.Abs(denom) < minDepthGap {
		denom = math.Copysign(minDepthGap, denom)
	}
	scale = focal / denom
	cx, cy := vp.Center()
	return p.X*scale + cx, p.Y*scale + cy, scale
}

// ZIndex is the paint order of a node at the given perspective scale
func ZIndex(scale float64) int {
	return int(math.Floor(scale * 100))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
