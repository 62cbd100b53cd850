package design

import (
	"math"
	"testing"
)

const sr = 44100.0

func TestLowpassShape(t *testing.T) {
	lp := Lowpass(1000, 1, sr)
	if lp.MagnitudeDB(100, sr) < lp.MagnitudeDB(10000, sr)+20 {
		t.Fatalf("lowpass not attenuating highs: 100Hz=%.2f dB 10kHz=%.2f dB",
			lp.MagnitudeDB(100, sr), lp.MagnitudeDB(10000, sr))
	}
	if db := lp.MagnitudeDB(10, sr); math.Abs(db) > 0.1 {
		t.Fatalf("lowpass passband = %.3f dB, want ~0", db)
	}
}

func TestLowpassOpenIsTransparentInAudibleBand(t *testing.T) {
	lp := Lowpass(20000, 1, sr)
	for _, f := range []float64{50, 1000, 8000} {
		if db := lp.MagnitudeDB(f, sr); math.Abs(db) > 0.5 {
			t.Fatalf("open filter at %v Hz = %.3f dB, want ~0", f, db)
		}
	}
}

func TestLowpassResonancePeaks(t *testing.T) {
	flat := Lowpass(2000, 1, sr)
	res := Lowpass(2000, 20, sr)
	if res.MagnitudeDB(2000, sr) < flat.MagnitudeDB(2000, sr)+20 {
		t.Fatalf("Q=20 peak %.2f dB not above Q=1 %.2f dB",
			res.MagnitudeDB(2000, sr), flat.MagnitudeDB(2000, sr))
	}
}

func TestLowpassClampsAboveNyquist(t *testing.T) {
	c := Lowpass(30000, 1, 32000)
	for _, v := range []float64{c.B0, c.B1, c.B2, c.A1, c.A2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("coefficient not finite: %+v", c)
		}
	}
}

func TestPeakAndShelfGains(t *testing.T) {
	tests := []struct {
		name   string
		gainDB float64
		probe  float64
		got    func(g float64) float64
	}{
		{"peak +6", 6, 1000, func(g float64) float64 { return Peak(1000, g, 0.5, sr).MagnitudeDB(1000, sr) }},
		{"peak -12", -12, 1000, func(g float64) float64 { return Peak(1000, g, 0.5, sr).MagnitudeDB(1000, sr) }},
		{"low shelf +9", 9, 20, func(g float64) float64 { return LowShelf(400, g, defaultQ, sr).MagnitudeDB(20, sr) }},
		{"high shelf -9", -9, 18000, func(g float64) float64 { return HighShelf(2500, g, defaultQ, sr).MagnitudeDB(18000, sr) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.got(tt.gainDB); math.Abs(got-tt.gainDB) > 0.5 {
				t.Fatalf("gain at %v Hz = %.3f dB, want %.1f", tt.probe, got, tt.gainDB)
			}
		})
	}
}

func TestZeroGainIsFlat(t *testing.T) {
	for _, c := range []struct {
		name string
		db   float64
	}{
		{"peak", Peak(1000, 0, 0.5, sr).MagnitudeDB(3000, sr)},
		{"low shelf", LowShelf(400, 0, defaultQ, sr).MagnitudeDB(100, sr)},
		{"high shelf", HighShelf(2500, 0, defaultQ, sr).MagnitudeDB(9000, sr)},
	} {
		if math.Abs(c.db) > 1e-9 {
			t.Fatalf("%s at 0 dB gain = %v dB, want 0", c.name, c.db)
		}
	}
}
