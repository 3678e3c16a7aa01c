package ranging

import (
	"ble-locate/internal/config/components"
	"errors"
	"fmt"
	"math"
)

var ErrNonFiniteRssi = errors.New("rssi is not finite")

// Estimator converts smoothed RSSI to metres with a log-distance path loss model.
// The path loss exponent switches between three regimes, so the curve is monotonic
// within a regime but has slope breaks at the two thresholds.
type Estimator struct {
	referencePower float64
	nearExponent   float64
	midExponent    float64
	farExponent    float64
	strong         float64
	weak           float64
	scale          float64
	maxDistance    float64
}

func NewEstimator(cfg components.PipelineConfigImpl) *Estimator {
	return &Estimator{
		referencePower: cfg.ReferencePower,
		nearExponent:   cfg.PathLossExponentNear,
		midExponent:    cfg.PathLossExponentMid,
		farExponent:    cfg.PathLossExponentFar,
		strong:         cfg.StrongSignalThreshold,
		weak:           cfg.WeakSignalThreshold,
		scale:          math.Pow(10, float64(cfg.DistancePrecision)),
		maxDistance:    cfg.MaxDistance,
	}
}

func (e *Estimator) Exponent(rssi float64) float64 {
	switch {
	case rssi > e.strong:
		return e.nearExponent
	case rssi < e.weak:
		return e.farExponent
	default:
		return e.midExponent
	}
}

func (e *Estimator) Estimate(rssi float64) (float64, error) {
	if math.IsNaN(rssi) || math.IsInf(rssi, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNonFiniteRssi, rssi)
	}

	distance := math.Pow(10, (e.referencePower-rssi)/(10*e.Exponent(rssi)))
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance > e.maxDistance {
		distance = e.maxDistance
	}
	return math.Round(distance*e.scale) / e.scale, nil
}
