package solver

import (
	"math"
)

// intersectTwo returns the midpoint of the two circle intersections, which lies on the
// line between the anchors. Circles too far apart fall back to the anchor midpoint, and
// nested circles clamp the half-chord to zero.
func intersectTwo(p1, p2 Point, r1, r2 float64) Point {
	delta := p2.Sub(p1)
	d := delta.Norm()
	if d == 0 || d > r1+r2 {
		return p1.Add(p2).Scale(0.5)
	}

	a := (r1*r1 - r2*r2 + d*d) / (2 * d)
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return p1.Add(p2).Scale(0.5)
	}
	return p1.Add(delta.Scale(a / d))
}
