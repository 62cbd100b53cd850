package core

import "math"

const (
	defaultEpsilon = 1e-12

	// referenceNote is the MIDI note pitch offsets are measured from.
	referenceNote = 60
)

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// Unit clamps value to [0, 1]. NaN maps to 0.
func Unit(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}

	return Clamp(value, 0, 1)
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FlushDenormals converts tiny denormal-like values to exact zero.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
// -Inf maps to 0.
func DBToLinear(db float64) float64 {
	if math.IsInf(db, -1) {
		return 0
	}

	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// MIDIToFreq returns the equal-tempered frequency of a MIDI note (A4 = 440 Hz).
func MIDIToFreq(note float64) float64 {
	return 440 * math.Pow(2, (note-69)/12)
}

// SemitoneRatio maps a pitch offset in semitones to a playback-rate ratio,
// freq(60+semitones)/freq(60). Pitch and speed stay coupled.
func SemitoneRatio(semitones float64) float64 {
	return MIDIToFreq(referenceNote+semitones) / MIDIToFreq(referenceNote)
}
