package biquad

import (
	"math"
	"testing"
)

func TestIdentityPassesThrough(t *testing.T) {
	s := NewSection(Identity())
	buf := []float64{1, -0.5, 0.25, 0}
	want := append([]float64(nil), buf...)

	s.ProcessBlock(buf)
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestProcessBlockMatchesSample(t *testing.T) {
	c := Coefficients{B0: 0.2, B1: 0.4, B2: 0.2, A1: -0.5, A2: 0.1}
	s1 := NewSection(c)
	s2 := NewSection(c)

	buf := make([]float64, 64)
	for i := range buf {
		buf[i] = math.Sin(float64(i) * 0.3)
	}

	want := make([]float64, len(buf))
	for i, x := range buf {
		want[i] = s1.ProcessSample(x)
	}

	s2.ProcessBlock(buf)
	for i := range buf {
		if diff := math.Abs(buf[i] - want[i]); diff > 1e-12 {
			t.Fatalf("sample %d: got %v want %v", i, buf[i], want[i])
		}
	}
}

func TestBankKeepsStateAcrossCoefficientSwap(t *testing.T) {
	c := Coefficients{B0: 0.2, B1: 0.4, B2: 0.2, A1: -0.5, A2: 0.1}
	b := NewBank(2, c)

	block := [][]float64{{1, 0, 0, 0}, {1, 0, 0, 0}}
	b.Process(block)
	before := b.State(0)

	b.SetCoefficients(Coefficients{B0: 0.3, B1: 0.3, B2: 0.3, A1: -0.2, A2: 0.05})
	if b.State(0) != before {
		t.Fatalf("state changed on coefficient swap: %v -> %v", before, b.State(0))
	}

	b.Reset()
	if b.State(1) != [2]float64{} {
		t.Fatalf("state not cleared by Reset: %v", b.State(1))
	}
}

func TestIdentityResponseIsFlat(t *testing.T) {
	c := Identity()
	for _, f := range []float64{20, 1000, 15000} {
		if db := c.MagnitudeDB(f, 44100); math.Abs(db) > 1e-9 {
			t.Fatalf("MagnitudeDB(%v) = %v, want 0", f, db)
		}
	}
}
