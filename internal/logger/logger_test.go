package logger

import (
	"ble-locate/internal/config/components"
	"bytes"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestNewLoggerAppliesLevel(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() { log.Logger = previous })

	l := NewLogger(components.LoggerConfigImpl{Level: "warn", Format: "json"})

	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())
}

func TestGetLoggerTagsComponent(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() { log.Logger = previous })

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	l := GetLogger("locate-service")
	l.Info().Msg("position predicted")

	assert.Contains(t, buf.String(), `"component":"locate-service"`)
	assert.Contains(t, buf.String(), `"message":"position predicted"`)
}
