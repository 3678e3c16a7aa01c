package solver

import (
	"gonum.org/v1/gonum/mat"
	"math"
)

const jacobianEpsilon = 1e-6

// gaussNewton minimises sum w_i (|x - p_i| - d_i)^2 starting from the weighted centroid.
func (s *Solver) gaussNewton(points []Point, obs []AnchorDistance) (Point, int, bool) {
	weights := make([]float64, len(obs))
	var x Point
	total := 0.0
	for i, o := range obs {
		weights[i] = weight(o.Variance)
		x = x.Add(points[i].Scale(weights[i]))
		total += weights[i]
	}
	x = x.Scale(1 / total)
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) || !x.IsFinite() {
		x = centroid(points)
	}

	n := len(points)
	J := mat.NewDense(n, 2, nil)
	W := mat.NewDiagDense(n, weights)
	r := mat.NewVecDense(n, nil)

	for iter := 0; iter < s.maxIterations; iter++ {
		for i, p := range points {
			diff := x.Sub(p)
			dist := diff.Norm()
			norm := math.Max(dist, jacobianEpsilon)
			J.Set(i, 0, diff.X/norm)
			J.Set(i, 1, diff.Y/norm)
			r.SetVec(i, obs[i].Distance-dist)
		}

		// (J^T W J) delta = J^T W r
		var JtW mat.Dense
		JtW.Mul(J.T(), W)
		var A mat.Dense
		A.Mul(&JtW, J)
		var b mat.VecDense
		b.MulVec(&JtW, r)

		var delta mat.VecDense
		if err := delta.SolveVec(&A, &b); err != nil {
			return x, iter, false
		}

		step := Point{X: delta.AtVec(0), Y: delta.AtVec(1)}
		if math.IsNaN(step.X) || math.IsNaN(step.Y) || math.IsInf(step.X, 0) || math.IsInf(step.Y, 0) {
			return x, iter, false
		}
		x = x.Add(step)

		if step.Norm() < s.convergence {
			return x, iter + 1, true
		}
	}
	return x, s.maxIterations, false
}

func centroid(points []Point) Point {
	var c Point
	for _, p := range points {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(len(points)))
}
