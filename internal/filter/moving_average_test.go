package filter

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestMovingAverageWindow(t *testing.T) {
	avg := NewMovingAverage(3)

	assert.Equal(t, 1.0, avg.Push(1))
	assert.Equal(t, 1.5, avg.Push(2))
	assert.Equal(t, 2.0, avg.Push(3))
	assert.Equal(t, 3.0, avg.Push(4))
	assert.Equal(t, 3, avg.Len())
}

func TestMovingAverageNonPositiveWindowHoldsOneValue(t *testing.T) {
	avg := NewMovingAverage(0)

	avg.Push(-70)
	assert.Equal(t, -55.0, avg.Push(-55))
	assert.Equal(t, 1, avg.Len())
}

func TestMovingAverageEmpty(t *testing.T) {
	assert.Equal(t, 0.0, NewMovingAverage(5).Mean())
}
