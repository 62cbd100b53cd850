// Package waveform extracts overview peaks for track display.
package waveform

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// Buckets is the number of peak values produced per track.
const Buckets = 500

// Peaks splits samples into Buckets equal spans and returns the largest
// absolute magnitude of each, clamped to [0,1]. Bucket i covers
// [i*n/Buckets, (i+1)*n/Buckets). Fewer samples than buckets leave the
// trailing empty buckets at 0.
func Peaks(samples []float64) [Buckets]float64 {
	var out [Buckets]float64

	n := len(samples)
	if n == 0 {
		return out
	}

	for i := range out {
		start := i * n / Buckets
		end := (i + 1) * n / Buckets

		if end <= start {
			continue
		}

		v := vecmath.MaxAbs(samples[start:end])
		if math.IsNaN(v) {
			v = 0
		}

		out[i] = math.Min(1, v)
	}

	return out
}
