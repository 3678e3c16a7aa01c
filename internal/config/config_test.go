package config

import (
	"errors"
	"testing"
	"time"

	"ble-locate/internal/config/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func disableStorage(t *testing.T) {
	t.Setenv("POSTGRES_ENABLED", "false")
	t.Setenv("INFLUXDB_ENABLED", "false")
	t.Setenv("REDIS_ENABLED", "false")
}

func TestLoadDefaults(t *testing.T) {
	disableStorage(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.MQTT.Host)
	assert.Equal(t, 1883, cfg.MQTT.Port)
	assert.Equal(t, "ble-locate", cfg.MQTT.BaseTopic)
	assert.Equal(t, "LOCATE", cfg.MQTT.Source)

	assert.Equal(t, 10, cfg.Service.MaxConcurrentProcessing)
	assert.Equal(t, 5*time.Minute, cfg.Service.MeasurementTTL)
	assert.Equal(t, 30*time.Second, cfg.Service.SweepInterval)

	p := cfg.Pipeline
	assert.Equal(t, 0.01, p.ProcessNoise)
	assert.Equal(t, 0.8, p.ObservationNoise)
	assert.Equal(t, 5, p.SmoothingWindow)
	assert.Equal(t, -59.0, p.ReferencePower)
	assert.Equal(t, 2.0, p.PathLossExponentNear)
	assert.Equal(t, 2.7, p.PathLossExponentMid)
	assert.Equal(t, 3.2, p.PathLossExponentFar)
	assert.Equal(t, -65.0, p.StrongSignalThreshold)
	assert.Equal(t, -80.0, p.WeakSignalThreshold)
	assert.Equal(t, 2, p.DistancePrecision)
	assert.Equal(t, 3, p.SolveAnchorThreshold)
	assert.Equal(t, 10, p.MaxIterations)
	assert.Equal(t, 1e-3, p.ConvergenceThreshold)
}

func TestLoadFromEnvironment(t *testing.T) {
	disableStorage(t)
	t.Setenv("MQTT_BASE_TOPIC", "site-a/")
	t.Setenv("SMOOTHING_WINDOW", "3")
	t.Setenv("SOLVE_ANCHOR_THRESHOLD", "4")
	t.Setenv("PATH_LOSS_EXPONENT_FAR", "3.5")
	t.Setenv("MEASUREMENT_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "site-a", cfg.MQTT.BaseTopic)
	assert.Equal(t, 3, cfg.Pipeline.SmoothingWindow)
	assert.Equal(t, 4, cfg.Pipeline.SolveAnchorThreshold)
	assert.Equal(t, 3.5, cfg.Pipeline.PathLossExponentFar)
	assert.Equal(t, 90*time.Second, cfg.Service.MeasurementTTL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		field string
	}{
		{name: "mqtt port", key: "MQTT_PORT", value: "70000", field: "port"},
		{name: "solve threshold", key: "SOLVE_ANCHOR_THRESHOLD", value: "1", field: "solve_anchor_threshold"},
		{name: "thresholds inverted", key: "WEAK_SIGNAL_THRESHOLD", value: "-60", field: "weak_signal_threshold"},
		{name: "log level", key: "LOG_LEVEL", value: "verbose", field: "level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disableStorage(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)

			var cfgErr *shared.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestInfluxRequiresTokenWhenEnabled(t *testing.T) {
	disableStorage(t)
	t.Setenv("INFLUXDB_ENABLED", "true")
	t.Setenv("INFLUXDB_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "influxdb.token")
}
