package solver

import (
	"ble-locate/internal/config/components"
	"ble-locate/internal/models"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

func newSolver() *Solver {
	return New(components.DefaultPipelineConfig())
}

// offset returns a coordinate east/north metres away from origin on a flat local plane.
func offset(origin models.AnchorCoordinate, east, north float64) models.AnchorCoordinate {
	return models.AnchorCoordinate{
		Lat: origin.Lat + north/EarthRadius*180/math.Pi,
		Lon: origin.Lon + east/(EarthRadius*math.Cos(origin.Lat*math.Pi/180))*180/math.Pi,
	}
}

var origin = models.AnchorCoordinate{Lat: 12.2958, Lon: 76.6394}

func TestProjectionRoundTrip(t *testing.T) {
	anchors := []models.AnchorCoordinate{origin, offset(origin, 120, 40), offset(origin, -30, 80)}
	proj := NewProjection(anchors)

	for _, a := range anchors {
		back := proj.Inverse(proj.Forward(a))
		assert.InDelta(t, a.Lat, back.Lat, 1e-12)
		assert.InDelta(t, a.Lon, back.Lon, 1e-12)
	}
}

func TestSolveRejectsTooFewAnchors(t *testing.T) {
	s := newSolver()

	_, err := s.Solve(nil)
	assert.True(t, errors.Is(err, ErrInsufficientAnchors))

	_, err = s.Solve([]AnchorDistance{{Anchor: origin, Distance: 3, Variance: 1}})
	assert.True(t, errors.Is(err, ErrInsufficientAnchors))
}

func TestSolveTwoAnchorsTouchingCircles(t *testing.T) {
	a := origin
	b := offset(origin, 10, 0)
	proj := NewProjection([]models.AnchorCoordinate{a, b})
	d := proj.Forward(b).Sub(proj.Forward(a)).Norm()

	res, err := newSolver().Solve([]AnchorDistance{
		{Anchor: a, Distance: d / 2, Variance: 1},
		{Anchor: b, Distance: d / 2, Variance: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, MethodTwoAnchor, res.Method)
	got := proj.Forward(res.Location)
	assert.InDelta(t, 0, got.X, 1e-6)
	assert.InDelta(t, 0, got.Y, 1e-6)
}

func TestSolveTwoAnchorsTooFarApartFallsBackToMidpoint(t *testing.T) {
	a := origin
	b := offset(origin, 0, 100)

	res, err := newSolver().Solve([]AnchorDistance{
		{Anchor: a, Distance: 5, Variance: 1},
		{Anchor: b, Distance: 5, Variance: 1},
	})

	require.NoError(t, err)
	assert.InDelta(t, (a.Lat+b.Lat)/2, res.Location.Lat, 1e-9)
	assert.InDelta(t, (a.Lon+b.Lon)/2, res.Location.Lon, 1e-9)
}

func TestSolveTwoAnchorsAsymmetric(t *testing.T) {
	a := origin
	b := offset(origin, 10, 0)
	proj := NewProjection([]models.AnchorCoordinate{a, b})
	pa := proj.Forward(a)

	res, err := newSolver().Solve([]AnchorDistance{
		{Anchor: a, Distance: 5, Variance: 1},
		{Anchor: b, Distance: 7, Variance: 1},
	})

	require.NoError(t, err)
	got := proj.Forward(res.Location).Sub(pa)
	// a = (25 - 49 + 100) / 20
	assert.InDelta(t, 3.8, got.X, 1e-6)
	assert.InDelta(t, 0, got.Y, 1e-6)
}

func TestSolveCoincidentAnchors(t *testing.T) {
	res, err := newSolver().Solve([]AnchorDistance{
		{Anchor: origin, Distance: 5, Variance: 1},
		{Anchor: origin, Distance: 7, Variance: 1},
	})

	require.NoError(t, err)
	assert.InDelta(t, origin.Lat, res.Location.Lat, 1e-12)
	assert.InDelta(t, origin.Lon, res.Location.Lon, 1e-12)
}

func TestSolveTriangleConverges(t *testing.T) {
	anchors := []models.AnchorCoordinate{origin, offset(origin, 30, 0), offset(origin, 10, 25)}
	proj := NewProjection(anchors)
	truth := proj.Forward(offset(origin, 12, 9))

	obs := make([]AnchorDistance, len(anchors))
	for i, a := range anchors {
		obs[i] = AnchorDistance{Anchor: a, Distance: truth.Sub(proj.Forward(a)).Norm(), Variance: 2}
	}

	res, err := newSolver().Solve(obs)

	require.NoError(t, err)
	assert.Equal(t, MethodWNLS, res.Method)
	assert.True(t, res.Converged)
	assert.LessOrEqual(t, res.Iterations, 10)
	assert.Less(t, proj.Forward(res.Location).Sub(truth).Norm(), 1e-3)
}

func TestSolveWeightsFavourConfidentAnchors(t *testing.T) {
	anchors := []models.AnchorCoordinate{origin, offset(origin, 20, 0), offset(origin, 0, 20), offset(origin, 20, 20)}
	proj := NewProjection(anchors)
	truth := proj.Forward(offset(origin, 5, 5))

	obs := make([]AnchorDistance, len(anchors))
	for i, a := range anchors {
		obs[i] = AnchorDistance{Anchor: a, Distance: truth.Sub(proj.Forward(a)).Norm(), Variance: 0.5}
	}
	// corrupt the last range but mark it as very noisy
	obs[3].Distance += 8
	obs[3].Variance = 1000

	res, err := newSolver().Solve(obs)

	require.NoError(t, err)
	assert.Less(t, proj.Forward(res.Location).Sub(truth).Norm(), 0.5)
}

func TestSolveCollinearAnchorsStillReturnEstimate(t *testing.T) {
	anchors := []models.AnchorCoordinate{origin, offset(origin, 10, 0), offset(origin, 20, 0)}

	res, err := newSolver().Solve([]AnchorDistance{
		{Anchor: anchors[0], Distance: 10, Variance: 1},
		{Anchor: anchors[1], Distance: 5, Variance: 1},
		{Anchor: anchors[2], Distance: 10, Variance: 1},
	})

	require.NoError(t, err)
	assert.False(t, math.IsNaN(res.Location.Lat))
	assert.False(t, math.IsNaN(res.Location.Lon))
}

func TestSolveNonFiniteVariancesStillReturnFiniteEstimate(t *testing.T) {
	anchors := []models.AnchorCoordinate{origin, offset(origin, 30, 0), offset(origin, 10, 25)}
	proj := NewProjection(anchors)
	truth := proj.Forward(offset(origin, 12, 9))

	for _, variance := range []float64{math.Inf(1), math.NaN()} {
		obs := make([]AnchorDistance, len(anchors))
		for i, a := range anchors {
			obs[i] = AnchorDistance{Anchor: a, Distance: truth.Sub(proj.Forward(a)).Norm(), Variance: variance}
		}

		res, err := newSolver().Solve(obs)

		require.NoError(t, err)
		assert.False(t, math.IsNaN(res.Location.Lat) || math.IsInf(res.Location.Lat, 0), "variance %v", variance)
		assert.False(t, math.IsNaN(res.Location.Lon) || math.IsInf(res.Location.Lon, 0), "variance %v", variance)
		// equal weights, so the fit still lands on the true position
		assert.Less(t, proj.Forward(res.Location).Sub(truth).Norm(), 1e-3)
	}
}

func TestSolveNonFiniteDistancesFallBackToCentroid(t *testing.T) {
	anchors := []models.AnchorCoordinate{origin, offset(origin, 30, 0), offset(origin, 10, 25)}

	obs := make([]AnchorDistance, len(anchors))
	for i, a := range anchors {
		obs[i] = AnchorDistance{Anchor: a, Distance: math.Inf(1), Variance: math.Inf(1)}
	}
	res, err := newSolver().Solve(obs)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.False(t, math.IsNaN(res.Location.Lat) || math.IsNaN(res.Location.Lon))

	res, err = newSolver().Solve(obs[:2])
	require.NoError(t, err)
	assert.False(t, math.IsNaN(res.Location.Lat) || math.IsNaN(res.Location.Lon))
}
