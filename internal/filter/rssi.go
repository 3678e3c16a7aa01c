package filter

import (
	"ble-locate/internal/config/components"
)

// RssiFilter smooths the RSSI stream of a single (device, anchor) pair.
// It is not safe for concurrent use; callers serialise access per pair.
type RssiFilter struct {
	kalman  Kalman
	state   KalmanState
	average *MovingAverage
}

func NewRssiFilter(cfg components.PipelineConfigImpl) *RssiFilter {
	return &RssiFilter{
		kalman:  NewKalman(cfg.ProcessNoise, cfg.ObservationNoise),
		average: NewMovingAverage(cfg.SmoothingWindow),
	}
}

// Apply runs raw through the Kalman stage and then the moving average.
func (f *RssiFilter) Apply(raw float64) float64 {
	var filtered float64
	f.state, filtered = f.kalman.Update(f.state, raw)
	return f.average.Push(filtered)
}

func (f *RssiFilter) State() KalmanState {
	return f.state
}
