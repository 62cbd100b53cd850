// Package testutil holds deterministic fixtures and tolerance helpers shared
// by package tests.
package testutil

import (
	"math"
	"math/rand"
)

// Sine generates a deterministic sine wave starting at phase 0.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// Noise generates white noise with a fixed seed.
func Noise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}

// Ramp generates 0, 1/length, 2/length, ... so every frame is distinct and
// its index can be recovered from its value.
func Ramp(length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = float64(i) / float64(length)
	}

	return out
}

// clickMs is the length of one metronome click.
const clickMs = 10

// ClickTrack renders a metronome at bpm: a 1 kHz burst with an exponential
// decay at every beat, peaking at amplitude 0.9.
func ClickTrack(bpm, sampleRate, seconds float64) []float64 {
	out := make([]float64, int(seconds*sampleRate))

	period := 60 * sampleRate / bpm
	clickLen := int(clickMs * sampleRate / 1000)

	for beat := 0; ; beat++ {
		start := int(math.Round(float64(beat) * period))
		if start >= len(out) {
			break
		}

		for i := 0; i < clickLen && start+i < len(out); i++ {
			env := math.Exp(-5 * float64(i) / float64(clickLen))
			out[start+i] = 0.9 * env * math.Sin(2*math.Pi*1000*float64(i)/sampleRate)
		}
	}

	return out
}

// Stereo duplicates a mono signal into a planar two-channel block.
func Stereo(mono []float64) [][]float64 {
	return [][]float64{
		append([]float64(nil), mono...),
		append([]float64(nil), mono...),
	}
}
