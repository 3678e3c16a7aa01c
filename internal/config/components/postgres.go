package components

import (
	"ble-locate/internal/config/shared"
	"ble-locate/internal/interfaces"
	"fmt"
)

type PostgresConfig interface {
	interfaces.Config
	GetDsn() string
}

type PostgresConfigImpl struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
	TimeZone string `json:"timezone"`
}

func NewPostgresConfig() PostgresConfigImpl {
	config := PostgresConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (P *PostgresConfigImpl) Load() {
	P.Enabled = shared.GetEnvAsBool("POSTGRES_ENABLED", true)
	P.Host = shared.GetEnv("POSTGRES_HOST", "")
	P.Port = shared.GetEnvAsInt("POSTGRES_PORT", 0)
	P.User = shared.GetEnv("POSTGRES_USER", "")
	P.Password = shared.GetEnv("POSTGRES_PASSWORD", "")
	P.Database = shared.GetEnv("POSTGRES_DB", "")
	P.SSLMode = shared.GetEnv("POSTGRES_SSL_MODE", "")
	P.TimeZone = shared.GetEnv("TZ", "")
}

func (P *PostgresConfigImpl) SetDefaults() {
	if P.Host == "" {
		P.Host = "localhost"
	}
	if P.Port == 0 {
		P.Port = 5432
	}
	if P.User == "" {
		P.User = "postgres"
	}
	if P.Database == "" {
		P.Database = "ble_locate"
	}
	if P.SSLMode == "" || P.SSLMode == "false" {
		P.SSLMode = "disable"
	}
	if P.TimeZone == "" {
		P.TimeZone = "UTC"
	}
}

func (P *PostgresConfigImpl) Validate() error {
	if !P.Enabled {
		return nil
	}
	if P.Host == "" {
		return shared.NewConfigError("postgres", "host", nil, "is required")
	}
	if P.Port <= 0 {
		return shared.NewConfigError("postgres", "port", P.Port, "must be greater than 0")
	}
	if P.User == "" {
		return shared.NewConfigError("postgres", "user", nil, "is required")
	}
	if P.Database == "" {
		return shared.NewConfigError("postgres", "database", nil, "is required")
	}
	switch P.SSLMode {
	case "disable", "require", "verify-ca", "verify-full":
	default:
		return shared.NewConfigError("postgres", "ssl_mode", P.SSLMode, "must be one of: disable, require, verify-ca, verify-full")
	}
	return nil
}

func (P *PostgresConfigImpl) GetDsn() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		P.Host, P.Port, P.User, P.Password, P.Database, P.SSLMode, P.TimeZone,
	)
}

var _ PostgresConfig = (*PostgresConfigImpl)(nil)
