package filter

// MovingAverage is a fixed-capacity ring of the most recent values.
type MovingAverage struct {
	values []float64
	next   int
	size   int
}

func NewMovingAverage(window int) *MovingAverage {
	if window < 1 {
		window = 1
	}
	return &MovingAverage{values: make([]float64, window)}
}

// Push adds v, evicting the oldest value when full, and returns the mean of the window.
func (m *MovingAverage) Push(v float64) float64 {
	m.values[m.next] = v
	m.next = (m.next + 1) % len(m.values)
	if m.size < len(m.values) {
		m.size++
	}
	return m.Mean()
}

// Mean is summed from scratch so long-running streams do not accumulate drift.
func (m *MovingAverage) Mean() float64 {
	if m.size == 0 {
		return 0
	}
	total := 0.0
	for i := 0; i < m.size; i++ {
		total += m.values[i]
	}
	return total / float64(m.size)
}

func (m *MovingAverage) Len() int {
	return m.size
}
