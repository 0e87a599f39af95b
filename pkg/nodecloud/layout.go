package nodecloud

import "math"

// SpherePoint places point i of n on a sphere of the given radius using a
// golden-angle spiral. offset rotates the spiral so two populations laid out
// with different offsets do not align.
//
// n == 1 yields the pole (0, 0, radius). Invalid i or n yield the origin.
func SpherePoint(i, n int, radius, offset float64) Point3D {
	if n <= 0 || i < 0 || i >= n {
		return Point3D{}
	}
	var phi float64
	if n > 1 {
		phi = math.Acos(-1 + 2*float64(i)/float64(n))
	}
	theta := math.Sqrt(float64(n)*math.Pi)*phi + offset
	return Point3D{
		X: radius * math.Cos(theta) * math.Sin(phi),
		Y: radius * math.Sin(theta) * math.Sin(phi),
		Z: radius * math.Cos(phi),
	}
}

// Shell lays out a whole population of n points
func Shell(n int, radius, offset float64) []Point3D {
	if n <= 0 {
		return nil
	}
	pts := make([]Point3D, n)
	for i := range pts {
		pts[i] = SpherePoint(i, n, radius, offset)
	}
	return pts
}
