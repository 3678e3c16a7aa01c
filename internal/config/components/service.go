package components

import (
	"ble-locate/internal/config/shared"
	"ble-locate/internal/interfaces"
	"time"
)

type ServiceConfig interface {
	interfaces.Config
}

type ServiceConfigImpl struct {
	Name                    string        `json:"name"`
	Version                 string        `json:"version"`
	MaxConcurrentProcessing int           `json:"max_concurrent_processing"`
	WorkerQueueSize         int           `json:"worker_queue_size"`
	MeasurementTTL          time.Duration `json:"measurement_ttl"`
	SweepInterval           time.Duration `json:"sweep_interval"`
}

func NewServiceConfig() ServiceConfigImpl {
	config := ServiceConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (S *ServiceConfigImpl) Load() {
	S.Name = shared.GetEnv("SERVICE_NAME", "")
	S.Version = shared.GetEnv("SERVICE_VERSION", "")
	S.MaxConcurrentProcessing = shared.GetEnvAsInt("MAX_CONCURRENT_PROCESSING", 0)
	S.WorkerQueueSize = shared.GetEnvAsInt("WORKER_QUEUE_SIZE", 0)
	S.MeasurementTTL = shared.GetEnvAsDuration("MEASUREMENT_TTL", 0)
	S.SweepInterval = shared.GetEnvAsDuration("SWEEP_INTERVAL", 0)
}

func (S *ServiceConfigImpl) SetDefaults() {
	if S.Name == "" {
		S.Name = "ble-locate"
	}
	if S.Version == "" {
		S.Version = "1.0.0"
	}
	if S.MaxConcurrentProcessing <= 0 {
		S.MaxConcurrentProcessing = 10
	}
	if S.WorkerQueueSize <= 0 {
		S.WorkerQueueSize = 256
	}
	if S.MeasurementTTL <= 0 {
		S.MeasurementTTL = 5 * time.Minute
	}
	if S.SweepInterval <= 0 {
		S.SweepInterval = 30 * time.Second
	}
}

func (S *ServiceConfigImpl) Validate() error {
	if S.Name == "" {
		return shared.NewConfigError("service", "name", nil, "is required")
	}
	if S.MaxConcurrentProcessing <= 0 {
		return shared.NewConfigError("service", "max_concurrent_processing", S.MaxConcurrentProcessing, "must be greater than 0")
	}
	if S.WorkerQueueSize <= 0 {
		return shared.NewConfigError("service", "worker_queue_size", S.WorkerQueueSize, "must be greater than 0")
	}
	if S.MeasurementTTL <= 0 {
		return shared.NewConfigError("service", "measurement_ttl", S.MeasurementTTL, "must be greater than 0")
	}
	if S.SweepInterval <= 0 {
		return shared.NewConfigError("service", "sweep_interval", S.SweepInterval, "must be greater than 0")
	}
	return nil
}

var _ ServiceConfig = (*ServiceConfigImpl)(nil)
