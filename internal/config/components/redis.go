package components

import (
	"ble-locate/internal/config/shared"
	"ble-locate/internal/interfaces"
)

type RedisConfig interface {
	interfaces.Config
}

type RedisConfigImpl struct {
	Enabled   bool   `json:"enabled"`
	Addr      string `json:"addr"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	KeyPrefix string `json:"key_prefix"`
}

func NewRedisConfig() RedisConfigImpl {
	config := RedisConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (R *RedisConfigImpl) Load() {
	R.Enabled = shared.GetEnvAsBool("REDIS_ENABLED", true)
	R.Addr = shared.GetEnv("REDIS_ADDR", "")
	R.Password = shared.GetEnv("REDIS_PASSWORD", "")
	R.DB = shared.GetEnvAsInt("REDIS_DB", 0)
	R.KeyPrefix = shared.GetEnv("REDIS_KEY_PREFIX", "")
}

func (R *RedisConfigImpl) SetDefaults() {
	if R.Addr == "" {
		R.Addr = "localhost:6379"
	}
	if R.KeyPrefix == "" {
		R.KeyPrefix = "ble-locate"
	}
}

func (R *RedisConfigImpl) Validate() error {
	if !R.Enabled {
		return nil
	}
	if R.Addr == "" {
		return shared.NewConfigError("redis", "addr", nil, "is required")
	}
	if R.DB < 0 {
		return shared.NewConfigError("redis", "db", R.DB, "cannot be negative")
	}
	return nil
}

var _ RedisConfig = (*RedisConfigImpl)(nil)
