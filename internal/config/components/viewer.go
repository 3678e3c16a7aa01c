package components

import (
	"ble-locate/internal/config/shared"
	"ble-locate/internal/interfaces"
	"time"
)

type ViewerConfig interface {
	interfaces.Config
}

type ViewerConfigImpl struct {
	Enabled      bool          `json:"enabled"`
	ListenAddr   string        `json:"listen_addr"`
	WriteTimeout time.Duration `json:"write_timeout"`
	SendBuffer   int           `json:"send_buffer"`
}

func NewViewerConfig() ViewerConfigImpl {
	config := ViewerConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (V *ViewerConfigImpl) Load() {
	V.Enabled = shared.GetEnvAsBool("VIEWER_ENABLED", true)
	V.ListenAddr = shared.GetEnv("VIEWER_LISTEN_ADDR", "")
	V.WriteTimeout = shared.GetEnvAsDuration("VIEWER_WRITE_TIMEOUT", 0)
	V.SendBuffer = shared.GetEnvAsInt("VIEWER_SEND_BUFFER", 0)
}

func (V *ViewerConfigImpl) SetDefaults() {
	if V.ListenAddr == "" {
		V.ListenAddr = ":5050"
	}
	if V.WriteTimeout <= 0 {
		V.WriteTimeout = 5 * time.Second
	}
	if V.SendBuffer <= 0 {
		V.SendBuffer = 64
	}
}

func (V *ViewerConfigImpl) Validate() error {
	if !V.Enabled {
		return nil
	}
	if V.ListenAddr == "" {
		return shared.NewConfigError("viewer", "listen_addr", nil, "is required")
	}
	return nil
}

var _ ViewerConfig = (*ViewerConfigImpl)(nil)
