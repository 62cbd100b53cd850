package effectchain

import (
	"math"

	"github.com/cwbudde/algo-dj/dsp/core"
	"github.com/cwbudde/algo-dj/dsp/filter/biquad"
	"github.com/cwbudde/algo-dj/dsp/filter/design"
)

// BandCoefficients designs one EQ band: a low shelf at 400 Hz, a mid peak
// at 1 kHz or a high shelf at 2.5 kHz. Zero gain and unknown bands give an
// identity section.
func BandCoefficients(band Band, gainDB, sampleRate float64) biquad.Coefficients {
	gainDB = clampEQGain(gainDB)
	if gainDB == 0 {
		return biquad.Identity()
	}

	switch band {
	case BandLow:
		return design.LowShelf(LowShelfHz, gainDB, shelfQ, sampleRate)
	case BandMid:
		return design.Peak(MidPeakHz, gainDB, MidPeakQ, sampleRate)
	case BandHigh:
		return design.HighShelf(HighShelfHz, gainDB, shelfQ, sampleRate)
	default:
		return biquad.Identity()
	}
}

// clampEQGain limits a band gain to ±MaxEQGainDB. NaN maps to 0.
func clampEQGain(gainDB float64) float64 {
	if math.IsNaN(gainDB) {
		return 0
	}

	return core.Clamp(gainDB, -MaxEQGainDB, MaxEQGainDB)
}

// EQResponseDB returns the combined magnitude response in dB of the three
// bands with the given gains (low, mid, high) at each frequency.
func EQResponseDB(gains [3]float64, sampleRate float64, freqs []float64) []float64 {
	var bands [3]biquad.Coefficients
	for i, g := range gains {
		bands[i] = BandCoefficients(Band(i), g, sampleRate)
	}

	out := make([]float64, len(freqs))
	for i, f := range freqs {
		for _, c := range bands {
			out[i] += c.MagnitudeDB(f, sampleRate)
		}
	}

	return out
}
