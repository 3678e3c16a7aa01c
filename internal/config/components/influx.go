package components

import (
	"ble-locate/internal/config/shared"
	"ble-locate/internal/interfaces"
	"strings"
)

type InfluxConfig interface {
	interfaces.Config
	GetUrl() string
}

type InfluxConfigImpl struct {
	Enabled       bool   `json:"enabled"`
	URL           string `json:"url"`
	Token         string `json:"token"`
	Organization  string `json:"organization"`
	Bucket        string `json:"bucket"`
	BatchSize     int    `json:"batch_size"`
	FlushInterval int    `json:"flush_interval_seconds"`
}

func NewInfluxConfig() InfluxConfigImpl {
	config := InfluxConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (I *InfluxConfigImpl) Load() {
	I.Enabled = shared.GetEnvAsBool("INFLUXDB_ENABLED", true)
	I.URL = shared.GetEnv("INFLUXDB_URL", "")
	I.Token = shared.GetEnv("INFLUXDB_TOKEN", "")
	I.Organization = shared.GetEnv("INFLUXDB_ORG", "")
	I.Bucket = shared.GetEnv("INFLUXDB_BUCKET", "")
	I.BatchSize = shared.GetEnvAsInt("INFLUXDB_BATCH_SIZE", 0)
	I.FlushInterval = shared.GetEnvAsInt("INFLUXDB_FLUSH_INTERVAL", 0)
}

func (I *InfluxConfigImpl) SetDefaults() {
	if I.URL == "" {
		I.URL = "http://localhost:8086"
	}
	if I.Organization == "" {
		I.Organization = "ble_locate"
	}
	if I.Bucket == "" {
		I.Bucket = "locations"
	}
	if I.BatchSize <= 0 {
		I.BatchSize = 100
	}
	if I.FlushInterval <= 0 {
		I.FlushInterval = 10
	}
}

func (I *InfluxConfigImpl) Validate() error {
	if !I.Enabled {
		return nil
	}
	if I.URL == "" {
		return shared.NewConfigError("influxdb", "url", nil, "is required")
	}
	if !strings.HasPrefix(I.URL, "http://") && !strings.HasPrefix(I.URL, "https://") {
		return shared.NewConfigError("influxdb", "url", I.URL, "must start with http:// or https://")
	}
	if I.Token == "" {
		return shared.NewConfigError("influxdb", "token", nil, "is required")
	}
	if I.Organization == "" {
		return shared.NewConfigError("influxdb", "organization", nil, "is required")
	}
	if I.Bucket == "" {
		return shared.NewConfigError("influxdb", "bucket", nil, "is required")
	}
	if I.FlushInterval < 1 || I.FlushInterval > 60 {
		return shared.NewConfigError("influxdb", "flush_interval", I.FlushInterval, "must be between 1 and 60 seconds")
	}
	return nil
}

func (I *InfluxConfigImpl) GetUrl() string {
	return I.URL
}

var _ InfluxConfig = (*InfluxConfigImpl)(nil)
