package filter

// KalmanState is the scalar estimate and error covariance of one RSSI stream.
type KalmanState struct {
	X           float64
	P           float64
	Initialized bool
}

// Kalman is a one-dimensional constant-value filter with process noise Q and observation noise R.
type Kalman struct {
	Q float64
	R float64
}

func NewKalman(q, r float64) Kalman {
	return Kalman{Q: q, R: r}
}

// Update folds one raw sample into state and returns the new state and estimate.
// The first sample seeds the state with x = raw, p = 1 and is then run through the
// regular update so the first estimate equals the raw value.
func (k Kalman) Update(state KalmanState, raw float64) (KalmanState, float64) {
	if !state.Initialized {
		state = KalmanState{X: raw, P: 1, Initialized: true}
	}

	pPred := state.P + k.Q
	gain := pPred / (pPred + k.R)

	state.X = state.X + gain*(raw-state.X)
	state.P = (1 - gain) * pPred
	return state, state.X
}
