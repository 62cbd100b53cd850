package testutil

import (
	"math"
	"testing"
)

func TestSineAndNoiseDeterministic(t *testing.T) {
	a := Sine(440, 44100, 0.5, 100)
	b := Sine(440, 44100, 0.5, 100)
	RequireSliceNearlyEqual(t, a, b, 0)

	if math.Abs(a[0]) > 1e-15 {
		t.Fatalf("sine[0] = %v, want 0", a[0])
	}

	n1, n2 := Noise(7, 1, 64), Noise(7, 1, 64)
	RequireSliceNearlyEqual(t, n1, n2, 0)

	if d, _ := MaxAbsDiff(Noise(1, 1, 16), Noise(2, 1, 16)); d == 0 {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestClickTrackSpacing(t *testing.T) {
	const sr = 44100.0

	track := ClickTrack(120, sr, 2)
	if len(track) != 88200 {
		t.Fatalf("len = %d, want 88200", len(track))
	}

	// Clicks at 0, 22050, 44100, 66150; gaps are silent.
	for _, start := range []int{0, 22050, 44100, 66150} {
		if Peak([][]float64{track[start : start+100]}) < 0.5 {
			t.Fatalf("no click near frame %d", start)
		}
	}

	RequireSilent(t, [][]float64{track[1000:22000]}, 0)
}

func TestRampAndStereo(t *testing.T) {
	r := Ramp(4)
	RequireSliceNearlyEqual(t, r, []float64{0, 0.25, 0.5, 0.75}, 0)

	st := Stereo(r)
	st[0][0] = 9
	if r[0] != 0 || st[1][0] != 0 {
		t.Fatal("Stereo must copy channels")
	}
}

func TestMaxAbsDiffLengthMismatch(t *testing.T) {
	if _, err := MaxAbsDiff([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatal("expected error for length mismatch")
	}
}
