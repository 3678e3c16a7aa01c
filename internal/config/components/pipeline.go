package components

import (
	"ble-locate/internal/config/shared"
	"ble-locate/internal/interfaces"
	"math"
)

type PipelineConfig interface {
	interfaces.Config
}

// PipelineConfigImpl holds the tuning constants of the signal-to-position pipeline.
type PipelineConfigImpl struct {
	ProcessNoise     float64 `json:"process_noise"`
	ObservationNoise float64 `json:"observation_noise"`
	SmoothingWindow  int     `json:"smoothing_window"`
	RssiHistorySize  int     `json:"rssi_history_size"`

	ReferencePower        float64 `json:"reference_power"`
	PathLossExponentNear  float64 `json:"path_loss_exponent_near"`
	PathLossExponentMid   float64 `json:"path_loss_exponent_mid"`
	PathLossExponentFar   float64 `json:"path_loss_exponent_far"`
	StrongSignalThreshold float64 `json:"strong_signal_threshold"`
	WeakSignalThreshold   float64 `json:"weak_signal_threshold"`
	DistancePrecision     int     `json:"distance_precision"`
	MaxDistance           float64 `json:"max_distance"`

	DefaultVariance float64 `json:"default_variance"`
	VarianceFloor   float64 `json:"variance_floor"`

	SolveAnchorThreshold int     `json:"solve_anchor_threshold"`
	MaxIterations        int     `json:"max_iterations"`
	ConvergenceThreshold float64 `json:"convergence_threshold"`
}

func NewPipelineConfig() PipelineConfigImpl {
	config := PipelineConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func DefaultPipelineConfig() PipelineConfigImpl {
	config := PipelineConfigImpl{}
	config.SetDefaults()
	return config
}

func (P *PipelineConfigImpl) Load() {
	P.ProcessNoise = shared.GetEnvAsFloat("KALMAN_PROCESS_NOISE", 0)
	P.ObservationNoise = shared.GetEnvAsFloat("KALMAN_OBSERVATION_NOISE", 0)
	P.SmoothingWindow = shared.GetEnvAsInt("SMOOTHING_WINDOW", 0)
	P.RssiHistorySize = shared.GetEnvAsInt("RSSI_HISTORY_SIZE", 0)

	P.ReferencePower = shared.GetEnvAsFloat("REFERENCE_POWER", 0)
	P.PathLossExponentNear = shared.GetEnvAsFloat("PATH_LOSS_EXPONENT_NEAR", 0)
	P.PathLossExponentMid = shared.GetEnvAsFloat("PATH_LOSS_EXPONENT_MID", 0)
	P.PathLossExponentFar = shared.GetEnvAsFloat("PATH_LOSS_EXPONENT_FAR", 0)
	P.StrongSignalThreshold = shared.GetEnvAsFloat("STRONG_SIGNAL_THRESHOLD", 0)
	P.WeakSignalThreshold = shared.GetEnvAsFloat("WEAK_SIGNAL_THRESHOLD", 0)
	P.DistancePrecision = shared.GetEnvAsInt("DISTANCE_PRECISION", -1)
	P.MaxDistance = shared.GetEnvAsFloat("MAX_DISTANCE", 0)

	P.DefaultVariance = shared.GetEnvAsFloat("DEFAULT_VARIANCE", 0)
	P.VarianceFloor = shared.GetEnvAsFloat("VARIANCE_FLOOR", 0)

	P.SolveAnchorThreshold = shared.GetEnvAsInt("SOLVE_ANCHOR_THRESHOLD", 0)
	P.MaxIterations = shared.GetEnvAsInt("SOLVER_MAX_ITERATIONS", 0)
	P.ConvergenceThreshold = shared.GetEnvAsFloat("SOLVER_CONVERGENCE_THRESHOLD", 0)
}

// SetDefaults fills every unset (zero) value. Signal strengths are never 0 dBm in
// practice, so a zero threshold or reference power is treated as unset.
func (P *PipelineConfigImpl) SetDefaults() {
	if P.ProcessNoise <= 0 {
		P.ProcessNoise = 0.01
	}
	if P.ObservationNoise <= 0 {
		P.ObservationNoise = 0.8
	}
	if P.SmoothingWindow <= 0 {
		P.SmoothingWindow = 5
	}
	if P.RssiHistorySize <= 0 {
		P.RssiHistorySize = 10
	}
	if P.ReferencePower == 0 {
		P.ReferencePower = -59
	}
	if P.PathLossExponentNear <= 0 {
		P.PathLossExponentNear = 2.0
	}
	if P.PathLossExponentMid <= 0 {
		P.PathLossExponentMid = 2.7
	}
	if P.PathLossExponentFar <= 0 {
		P.PathLossExponentFar = 3.2
	}
	if P.StrongSignalThreshold == 0 {
		P.StrongSignalThreshold = -65
	}
	if P.WeakSignalThreshold == 0 {
		P.WeakSignalThreshold = -80
	}
	if P.DistancePrecision < 0 {
		P.DistancePrecision = 2
	}
	if P.MaxDistance <= 0 {
		P.MaxDistance = 10000
	}
	if P.DefaultVariance <= 0 {
		P.DefaultVariance = 4.0
	}
	if P.VarianceFloor <= 0 {
		P.VarianceFloor = 1e-6
	}
	if P.SolveAnchorThreshold <= 0 {
		P.SolveAnchorThreshold = 3
	}
	if P.MaxIterations <= 0 {
		P.MaxIterations = 10
	}
	if P.ConvergenceThreshold <= 0 {
		P.ConvergenceThreshold = 1e-3
	}
}

func (P *PipelineConfigImpl) Validate() error {
	for field, value := range map[string]float64{
		"process_noise":           P.ProcessNoise,
		"observation_noise":       P.ObservationNoise,
		"reference_power":         P.ReferencePower,
		"path_loss_exponent_near": P.PathLossExponentNear,
		"path_loss_exponent_mid":  P.PathLossExponentMid,
		"path_loss_exponent_far":  P.PathLossExponentFar,
		"strong_signal_threshold": P.StrongSignalThreshold,
		"weak_signal_threshold":   P.WeakSignalThreshold,
		"max_distance":            P.MaxDistance,
		"default_variance":        P.DefaultVariance,
		"variance_floor":          P.VarianceFloor,
		"convergence_threshold":   P.ConvergenceThreshold,
	} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return shared.NewConfigError("pipeline", field, value, "must be finite")
		}
	}

	if P.ProcessNoise <= 0 || P.ObservationNoise <= 0 {
		return shared.NewConfigError("pipeline", "noise", nil, "process and observation noise must be greater than 0")
	}
	if P.SmoothingWindow <= 0 {
		return shared.NewConfigError("pipeline", "smoothing_window", P.SmoothingWindow, "must be greater than 0")
	}
	if P.RssiHistorySize <= 0 {
		return shared.NewConfigError("pipeline", "rssi_history_size", P.RssiHistorySize, "must be greater than 0")
	}
	if P.WeakSignalThreshold >= P.StrongSignalThreshold {
		return shared.NewConfigError("pipeline", "weak_signal_threshold", P.WeakSignalThreshold, "must be below strong_signal_threshold")
	}
	if P.PathLossExponentNear <= 0 || P.PathLossExponentMid <= 0 || P.PathLossExponentFar <= 0 {
		return shared.NewConfigError("pipeline", "path_loss_exponent", nil, "exponents must be greater than 0")
	}
	if P.DistancePrecision > 9 {
		return shared.NewConfigError("pipeline", "distance_precision", P.DistancePrecision, "must be between 0 and 9")
	}
	if P.SolveAnchorThreshold < 2 {
		return shared.NewConfigError("pipeline", "solve_anchor_threshold", P.SolveAnchorThreshold, "must be at least 2")
	}
	if P.MaxIterations <= 0 {
		return shared.NewConfigError("pipeline", "max_iterations", P.MaxIterations, "must be greater than 0")
	}
	return nil
}

var _ PipelineConfig = (*PipelineConfigImpl)(nil)
