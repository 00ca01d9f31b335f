package utils

import "sync"

// RollingAverage is the mean of the most recent samples added to it. It is safe for
// concurrent use.
type RollingAverage struct {
	mu     sync.Mutex
	data   []float64
	pos    int
	filled int
}

// NewRollingAverage returns a RollingAverage over the last numSamples samples.
func NewRollingAverage(numSamples int) *RollingAverage {
	if numSamples < 1 {
		numSamples = 1
	}
	return &RollingAverage{data: make([]float64, numSamples)}
}

// NumSamples is the window size.
func (ra *RollingAverage) NumSamples() int {
	return len(ra.data)
}

// Add replaces the oldest sample with x.
func (ra *RollingAverage) Add(x float64) {
	ra.mu.Lock()
	defer ra.mu.Unlock()
	ra.data[ra.pos] = x
	ra.pos++
	if ra.pos >= len(ra.data) {
		ra.pos = 0
	}
	if ra.filled < len(ra.data) {
		ra.filled++
	}
}

// Average is the mean of the samples in the window, zero before any was added.
func (ra *RollingAverage) Average() float64 {
	ra.mu.Lock()
	defer ra.mu.Unlock()
	if ra.filled == 0 {
		return 0
	}
	var sum float64
	for _, d := range ra.data[:ra.filled] {
		sum += d
	}
	return sum / float64(ra.filled)
}
