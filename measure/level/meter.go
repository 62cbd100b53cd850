// Package level provides a block-based smoothed RMS level meter.
package level

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// silenceFloor is the smoothed RMS below which the meter reports silence.
const silenceFloor = 1e-10

// Meter tracks an exponentially smoothed RMS over rendered blocks.
type Meter struct {
	channels  int
	smoothing float64
	rms       float64
	peak      float64
}

// NewMeter creates a meter with the given options.
func NewMeter(opts ...MeterOption) *Meter {
	cfg := ApplyMeterOptions(opts...)

	return &Meter{
		channels:  cfg.Channels,
		smoothing: cfg.Smoothing,
	}
}

// Process measures a planar block. The block is not modified.
func (m *Meter) Process(block [][]float64) {
	var (
		sum    float64
		n      int
		blkMax float64
	)

	for ch := 0; ch < len(block) && ch < m.channels; ch++ {
		buf := block[ch]
		sum += vecmath.DotProduct(buf, buf)
		n += len(buf)
		blkMax = math.Max(blkMax, vecmath.MaxAbs(buf))
	}

	if n == 0 {
		return
	}

	rms := math.Sqrt(sum / float64(n))
	m.rms = m.smoothing*m.rms + (1-m.smoothing)*rms
	m.peak = blkMax

	if m.rms < silenceFloor {
		m.rms = 0
	}
}

// RMS returns the smoothed linear RMS.
func (m *Meter) RMS() float64 { return m.rms }

// Peak returns the absolute peak of the last processed block.
func (m *Meter) Peak() float64 { return m.peak }

// DB returns the smoothed level in dBFS, or -Inf when silent.
func (m *Meter) DB() float64 {
	if m.rms <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(m.rms)
}

// Reset clears the meter to silence.
func (m *Meter) Reset() {
	m.rms = 0
	m.peak = 0
}
