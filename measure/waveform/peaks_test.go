package waveform

import (
	"math"
	"testing"
)

func TestPeaksZeroBuffer(t *testing.T) {
	for _, n := range []int{0, 10, 44100} {
		peaks := Peaks(make([]float64, n))
		for i, v := range peaks {
			if v != 0 {
				t.Fatalf("n=%d: peak %d = %v, want 0", n, i, v)
			}
		}
	}
}

func TestPeaksRangeAndPlacement(t *testing.T) {
	const n = 50000

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.25 * math.Sin(2*math.Pi*float64(i)/50)
	}

	samples[150] = -0.9 // bucket 1
	samples[n-1] = 3    // last bucket, clipped

	peaks := Peaks(samples)
	if len(peaks) != Buckets {
		t.Fatalf("len = %d, want %d", len(peaks), Buckets)
	}

	for i, v := range peaks {
		if v < 0 || v > 1 {
			t.Fatalf("peak %d = %v out of [0,1]", i, v)
		}
	}

	if peaks[1] != 0.9 {
		t.Fatalf("bucket 1 = %v, want 0.9", peaks[1])
	}

	if peaks[Buckets-1] != 1 {
		t.Fatalf("last bucket = %v, want clipped 1", peaks[Buckets-1])
	}

	if math.Abs(peaks[250]-0.25) > 1e-3 {
		t.Fatalf("bucket 250 = %v, want ~0.25", peaks[250])
	}
}

func TestPeaksShortInput(t *testing.T) {
	peaks := Peaks([]float64{0.5, -0.7})

	var nonZero int
	for _, v := range peaks {
		if v != 0 {
			nonZero++
		}
	}

	if nonZero != 2 {
		t.Fatalf("non-zero buckets = %d, want 2", nonZero)
	}

	if peaks[Buckets-1] != 0.7 {
		t.Fatalf("last bucket = %v, want 0.7", peaks[Buckets-1])
	}
}
