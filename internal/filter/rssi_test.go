package filter

import (
	"ble-locate/internal/config/components"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestRssiFilterSteadySignal(t *testing.T) {
	f := NewRssiFilter(components.DefaultPipelineConfig())

	for i := 0; i < 8; i++ {
		assert.Equal(t, -70.0, f.Apply(-70))
	}
	assert.True(t, f.State().Initialized)
}

func TestRssiFilterDampensSpike(t *testing.T) {
	f := NewRssiFilter(components.DefaultPipelineConfig())
	for i := 0; i < 5; i++ {
		f.Apply(-70)
	}

	out := f.Apply(-40)

	assert.Greater(t, out, -70.0)
	assert.Less(t, out, -65.0)
}
