package config

import (
	"ble-locate/internal/config/components"
	"ble-locate/internal/interfaces"
	"fmt"
	"github.com/joho/godotenv"
)

type Config struct {
	MQTT     components.MQTTConfigImpl     `json:"mqtt"`
	Postgres components.PostgresConfigImpl `json:"postgres"`
	InfluxDB components.InfluxConfigImpl   `json:"influxdb"`
	Redis    components.RedisConfigImpl    `json:"redis"`
	Logger   components.LoggerConfigImpl   `json:"logger"`
	Service  components.ServiceConfigImpl  `json:"service"`
	Viewer   components.ViewerConfigImpl   `json:"viewer"`
	Pipeline components.PipelineConfigImpl `json:"pipeline"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		MQTT:     components.NewMQTTConfig(),
		Postgres: components.NewPostgresConfig(),
		InfluxDB: components.NewInfluxConfig(),
		Redis:    components.NewRedisConfig(),
		Logger:   components.NewLoggerConfig(),
		Service:  components.NewServiceConfig(),
		Viewer:   components.NewViewerConfig(),
		Pipeline: components.NewPipelineConfig(),
	}

	return config, config.validate()
}

func (c *Config) validate() error {
	for name, component := range map[string]interfaces.Config{
		"mqtt":     &c.MQTT,
		"postgres": &c.Postgres,
		"influxdb": &c.InfluxDB,
		"redis":    &c.Redis,
		"logger":   &c.Logger,
		"service":  &c.Service,
		"viewer":   &c.Viewer,
		"pipeline": &c.Pipeline,
	} {
		if err := component.Validate(); err != nil {
			return fmt.Errorf("invalid %s config: %w", name, err)
		}
	}
	return nil
}
