package level

import (
	"math"
	"testing"
)

func sineBlock(amp float64, frames int) [][]float64 {
	block := [][]float64{make([]float64, frames), make([]float64, frames)}
	for i := range frames {
		v := amp * math.Sin(2*math.Pi*float64(i)/64)
		block[0][i] = v
		block[1][i] = v
	}

	return block
}

func TestSilentMeterIsNegInf(t *testing.T) {
	m := NewMeter()
	if !math.IsInf(m.DB(), -1) {
		t.Fatalf("fresh meter = %v, want -Inf", m.DB())
	}

	m.Process([][]float64{make([]float64, 256), make([]float64, 256)})
	if !math.IsInf(m.DB(), -1) {
		t.Fatalf("silent block = %v, want -Inf", m.DB())
	}
}

func TestConvergesToSineRMS(t *testing.T) {
	m := NewMeter()
	block := sineBlock(0.5, 256)

	for range 200 {
		m.Process(block)
	}

	want := 20 * math.Log10(0.5/math.Sqrt2)
	if math.Abs(m.DB()-want) > 0.01 {
		t.Fatalf("level = %.3f dB, want %.3f", m.DB(), want)
	}

	if math.Abs(m.Peak()-0.5) > 1e-9 {
		t.Fatalf("peak = %v, want 0.5", m.Peak())
	}
}

func TestSmoothingWeightsPreviousReading(t *testing.T) {
	tests := []struct {
		name      string
		smoothing float64
		want      float64
	}{
		{"default", defaultSmoothing, 0.2 * 0.5 / math.Sqrt2},
		{"none", 0, 0.5 / math.Sqrt2},
		{"clamped", 5, 0.01 * 0.5 / math.Sqrt2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMeter(WithSmoothing(tt.smoothing))
			m.Process(sineBlock(0.5, 256))

			if math.Abs(m.RMS()-tt.want) > 1e-9 {
				t.Fatalf("rms = %v, want %v", m.RMS(), tt.want)
			}
		})
	}
}

func TestDecaysToSilence(t *testing.T) {
	m := NewMeter()
	m.Process(sineBlock(1, 256))

	silent := [][]float64{make([]float64, 256), make([]float64, 256)}
	for range 200 {
		m.Process(silent)
	}

	if !math.IsInf(m.DB(), -1) {
		t.Fatalf("level after silence = %v, want -Inf", m.DB())
	}
}

func TestResetAndChannels(t *testing.T) {
	m := NewMeter(WithChannels(1))

	block := sineBlock(0.5, 256)
	for i := range block[1] {
		block[1][i] = 0
	}

	m.Process(block)
	if m.RMS() == 0 {
		t.Fatal("mono meter ignored channel 0")
	}

	m.Reset()
	if m.RMS() != 0 || m.Peak() != 0 {
		t.Fatal("reset did not clear meter")
	}
}
