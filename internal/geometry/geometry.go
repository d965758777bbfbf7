// Package geometry provides the pure planar math behind takeoff measurements.
//
// Everything here operates on points in canvas pixel space (origin top-left)
// and is stateless — no session or drawing types leak in. We build on
// github.com/golang/geo/r2 for the vector primitives instead of hand-rolling
// them; the shoelace and centroid formulas are the only domain-specific parts.
package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// degenerateAreaEpsilon is the signed-area magnitude below which a polygon is
// treated as degenerate (collinear or repeated vertices) and the centroid
// falls back to the vertex mean. Dividing by a near-zero signed area would
// fling the centroid far outside the polygon.
const degenerateAreaEpsilon = 1e-9

// Distance returns the Euclidean distance between two points.
func Distance(a, b r2.Point) float64 {
	return b.Sub(a).Norm()
}

// signedArea computes the shoelace sum of the polygon, indices modulo n.
// The sign encodes winding order: positive for counter-clockwise in a
// y-up frame (clockwise on a top-left-origin canvas).
func signedArea(pts []r2.Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += pts[i].Cross(pts[(i+1)%n])
	}
	return sum / 2
}

// PolygonArea returns the absolute shoelace area of the polygon described by
// pts. The polygon is closed automatically (last vertex connects back to the
// first). Self-intersecting input is not detected or corrected — the result
// is the absolute signed shoelace value, which for a bowtie is the difference
// of its two lobes, not their sum. Fewer than 3 points yield 0.
func PolygonArea(pts []r2.Point) float64 {
	return math.Abs(signedArea(pts))
}

// PolygonPerimeter returns the sum of edge lengths between consecutive
// vertices, wrapping from the last vertex back to the first.
func PolygonPerimeter(pts []r2.Point) float64 {
	n := len(pts)
	if n < 2 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += Distance(pts[i], pts[(i+1)%n])
	}
	return sum
}

// Centroid returns the area-weighted centroid of the polygon, used for label
// placement. For degenerate input (|signed area| below epsilon, e.g. all
// vertices collinear) it falls back to the arithmetic mean of the vertices so
// the label still lands somewhere sensible.
func Centroid(pts []r2.Point) r2.Point {
	n := len(pts)
	if n == 0 {
		return r2.Point{}
	}

	a := signedArea(pts)
	if math.Abs(a) < degenerateAreaEpsilon {
		return vertexMean(pts)
	}

	var c r2.Point
	for i := 0; i < n; i++ {
		p, q := pts[i], pts[(i+1)%n]
		cross := p.Cross(q)
		c = c.Add(p.Add(q).Mul(cross))
	}
	return c.Mul(1 / (6 * a))
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b r2.Point) r2.Point {
	return a.Add(b).Mul(0.5)
}

// vertexMean is the plain average of the vertices.
func vertexMean(pts []r2.Point) r2.Point {
	var m r2.Point
	for _, p := range pts {
		m = m.Add(p)
	}
	return m.Mul(1 / float64(len(pts)))
}
