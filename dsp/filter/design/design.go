package design

import (
	"math"

	"github.com/cwbudde/algo-dj/dsp/filter/biquad"
)

const (
	defaultQ = 1 / math.Sqrt2

	// maxNyquistFraction keeps cutoffs below Nyquist.
	maxNyquistFraction = 0.45
	minFreqHz          = 1.0
)

// Lowpass designs a resonant lowpass biquad at freq (Hz) with quality factor q.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b1 := 1 - cw
	b0 := b1 / 2
	b2 := b0

	return normalizeBiquad(b0, b1, b2, 1+alpha, -2*cw, 1-alpha)
}

// Peak designs a peaking-EQ biquad with gain in dB.
func Peak(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a := math.Pow(10, gainDB/40)

	return normalizeBiquad(
		1+alpha*a, -2*cw, 1-alpha*a,
		1+alpha/a, -2*cw, 1-alpha/a,
	)
}

// LowShelf designs a low-shelf biquad with gain in dB.
func LowShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * alpha

	return normalizeBiquad(
		a*((a+1)-(a-1)*cw+beta),
		2*a*((a-1)-(a+1)*cw),
		a*((a+1)-(a-1)*cw-beta),
		(a+1)+(a-1)*cw+beta,
		-2*((a-1)+(a+1)*cw),
		(a+1)+(a-1)*cw-beta,
	)
}

// HighShelf designs a high-shelf biquad with gain in dB.
func HighShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * alpha

	return normalizeBiquad(
		a*((a+1)+(a-1)*cw+beta),
		-2*a*((a-1)+(a+1)*cw),
		a*((a+1)+(a-1)*cw-beta),
		(a+1)-(a-1)*cw+beta,
		2*((a-1)-(a+1)*cw),
		(a+1)-(a-1)*cw-beta,
	)
}

// normalizedW0 clamps freq into (0, 0.45*fs] and returns the angular frequency.
func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	if math.IsNaN(freq) || math.IsInf(freq, -1) {
		return 0, false
	}

	freq = math.Min(math.Max(freq, minFreqHz), sampleRate*maxNyquistFraction)

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Identity()
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
