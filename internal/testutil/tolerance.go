package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireNearlyEqual fails t when got and want differ by more than eps.
func RequireNearlyEqual(t *testing.T, name string, got, want, eps float64) {
	t.Helper()

	if math.Abs(got-want) > eps {
		t.Fatalf("%s = %v, want %v (eps %v)", name, got, want, eps)
	}
}

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any sample of block is NaN or Inf.
func RequireFinite(t *testing.T, block [][]float64) {
	t.Helper()

	for ch := range block {
		for i, v := range block[ch] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("channel %d index %d: non-finite value %v", ch, i, v)
			}
		}
	}
}

// RequireSilent fails t if any sample of block exceeds eps in magnitude.
func RequireSilent(t *testing.T, block [][]float64, eps float64) {
	t.Helper()

	if peak := Peak(block); peak > eps {
		t.Fatalf("expected silence, peak %v > %v", peak, eps)
	}
}

// Peak returns the largest absolute sample across all channels.
func Peak(block [][]float64) float64 {
	var peak float64

	for _, ch := range block {
		for _, v := range ch {
			peak = math.Max(peak, math.Abs(v))
		}
	}

	return peak
}

// MaxAbsDiff returns the maximum absolute difference between two slices.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}

	var maxDiff float64
	for i := range a {
		maxDiff = math.Max(maxDiff, math.Abs(a[i]-b[i]))
	}

	return maxDiff, nil
}
