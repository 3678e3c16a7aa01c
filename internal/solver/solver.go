package solver

import (
	"ble-locate/internal/config/components"
	"ble-locate/internal/models"
	"errors"
	"fmt"
	"math"
)

var ErrInsufficientAnchors = errors.New("at least two anchors are required")

const (
	weightEpsilon = 1e-6
	// maxVariance stands in for variances that overflowed or were never finite.
	maxVariance = 1e12
)

type Method string

const (
	MethodTwoAnchor Method = "two_anchor"
	MethodWNLS      Method = "wnls"
)

// AnchorDistance is one range observation fed to the solver.
type AnchorDistance struct {
	Anchor   models.AnchorCoordinate
	Distance float64
	Variance float64
}

type Result struct {
	Location   models.AnchorCoordinate
	Method     Method
	Iterations int
	Converged  bool
}

type Solver struct {
	maxIterations int
	convergence   float64
}

func New(cfg components.PipelineConfigImpl) *Solver {
	return &Solver{
		maxIterations: cfg.MaxIterations,
		convergence:   cfg.ConvergenceThreshold,
	}
}

// Solve estimates the position that best explains the given ranges. Two anchors are
// intersected in closed form; three or more go through weighted Gauss-Newton.
// Numerical trouble never surfaces as an error, the best estimate so far is returned instead.
func (s *Solver) Solve(observations []AnchorDistance) (Result, error) {
	if len(observations) < 2 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInsufficientAnchors, len(observations))
	}

	anchors := make([]models.AnchorCoordinate, len(observations))
	for i, o := range observations {
		anchors[i] = o.Anchor
	}
	proj := NewProjection(anchors)

	points := make([]Point, len(observations))
	for i, a := range anchors {
		points[i] = proj.Forward(a)
	}

	if len(observations) == 2 {
		pt := intersectTwo(points[0], points[1], observations[0].Distance, observations[1].Distance)
		converged := true
		if !pt.IsFinite() {
			pt, converged = centroid(points), false
		}
		return Result{Location: proj.Inverse(pt), Method: MethodTwoAnchor, Converged: converged}, nil
	}

	pt, iterations, converged := s.gaussNewton(points, observations)
	if !pt.IsFinite() {
		pt, converged = centroid(points), false
	}
	return Result{
		Location:   proj.Inverse(pt),
		Method:     MethodWNLS,
		Iterations: iterations,
		Converged:  converged,
	}, nil
}

func weight(variance float64) float64 {
	if math.IsNaN(variance) || math.IsInf(variance, 0) || variance > maxVariance {
		variance = maxVariance
	}
	if variance < 0 {
		variance = 0
	}
	return 1 / (variance + weightEpsilon)
}
