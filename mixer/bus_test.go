package mixer

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-dj/dsp/effectchain"
	"github.com/cwbudde/algo-dj/internal/testutil"
)

func TestCrossfadeGains(t *testing.T) {
	tests := []struct {
		p    float64
		a, b float64
	}{
		{0, 1, 0},
		{1, 0, 1},
		{0.5, math.Sqrt2 / 2, math.Sqrt2 / 2},
		{-1, 1, 0},
		{2, 0, 1},
	}

	for _, tt := range tests {
		a, b := CrossfadeGains(tt.p)
		testutil.RequireNearlyEqual(t, "gain A", a, tt.a, 1e-6)
		testutil.RequireNearlyEqual(t, "gain B", b, tt.b, 1e-6)
	}
}

func TestCrossfadeConstantPower(t *testing.T) {
	for p := 0.0; p <= 1; p += 0.05 {
		a, b := CrossfadeGains(p)
		testutil.RequireNearlyEqual(t, "power", a*a+b*b, 1, 1e-12)

		if CrossfadeGain(DeckA, p) != a || CrossfadeGain(DeckB, p) != b {
			t.Fatalf("CrossfadeGain disagrees at p=%v", p)
		}
	}
}

func TestDeckGainFollowsFaderAndCrossfader(t *testing.T) {
	e := newTestEngine(t)
	loadMono(t, e, DeckA, "a", 120, testutil.DC(0.5, 8000))
	loadMono(t, e, DeckB, "b", 120, testutil.DC(0.5, 8000))

	gains := func() (float64, float64) {
		return e.decks[DeckA].chain.DeckGain(), e.decks[DeckB].chain.DeckGain()
	}

	a, b := gains()
	testutil.RequireNearlyEqual(t, "centered A", a, math.Sqrt2/2, 1e-6)
	testutil.RequireNearlyEqual(t, "centered B", b, math.Sqrt2/2, 1e-6)

	e.SetVolume(DeckA, 0.5)
	e.SetCrossfader(0)

	a, b = gains()
	testutil.RequireNearlyEqual(t, "A", a, 0.5, 1e-12)
	testutil.RequireNearlyEqual(t, "B", b, 0, 1e-12)

	e.SetVolume(DeckB, 3)
	e.SetCrossfader(1)

	a, b = gains()
	testutil.RequireNearlyEqual(t, "A", a, 0, 1e-12)
	testutil.RequireNearlyEqual(t, "B", b, 1, 1e-12)

	// The fader survives a reload.
	loadMono(t, e, DeckA, "a2", 120, testutil.DC(0.5, 8000))
	e.SetCrossfader(0)

	a, _ = gains()
	testutil.RequireNearlyEqual(t, "reloaded A", a, 0.5, 1e-12)
}

func TestMasterVolume(t *testing.T) {
	e := newTestEngine(t)
	loadMono(t, e, DeckA, "a", 120, testutil.DC(0.5, 8000))
	e.SetCrossfader(0)
	e.SetMasterVolume(0.5)
	e.Play(DeckA)

	out := render(e, 64)
	testutil.RequireNearlyEqual(t, "out", out[0][10], 0.25, 1e-12)

	e.SetMasterVolume(4)

	if got := e.Snapshot().MasterVolume; got != 1 {
		t.Fatalf("MasterVolume = %v, want 1", got)
	}

	if db := e.Snapshot().MasterLevelDB; math.IsInf(db, -1) {
		t.Fatal("master meter silent after playback")
	}
}

func TestEQResponseFollowsDeck(t *testing.T) {
	e := newTestEngine(t)
	e.SetEQ(DeckB, effectchain.BandMid, -6)

	resp := e.EQResponse(DeckB, []float64{effectchain.MidPeakHz})
	testutil.RequireNearlyEqual(t, "mid", resp[0], -6, 1e-6)

	if flat := e.EQResponse(DeckA, []float64{effectchain.MidPeakHz}); flat[0] != 0 {
		t.Fatalf("deck A response = %v", flat[0])
	}
}
