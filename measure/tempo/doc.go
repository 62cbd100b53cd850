// Package tempo estimates the tempo of a track from its raw samples.
//
// The estimator autocorrelates up to the first 30 seconds of a channel via
// FFT and picks the strongest lag inside the 60-200 BPM range. It is a coarse
// hint for beat-matching and loop sizing, not a beat tracker: expect octave
// errors on material without a clear pulse.
package tempo
