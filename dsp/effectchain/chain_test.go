package effectchain

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-dj/dsp/core"
	"github.com/cwbudde/algo-dj/internal/testutil"
)

func newTestChain(t *testing.T, mono []float64) (*Graph, *Chain) {
	t.Helper()

	g, err := NewGraph(newTestBackend(t))
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}

	var c *Chain
	if mono != nil {
		pcm := newPCM(t, testRate, mono)
		c, err = g.Create(0, pcm)
		pcm.Release()
	} else {
		c, err = g.Create(0, nil)
	}

	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	return g, c
}

func TestFilterEffectMapping(t *testing.T) {
	tests := []struct {
		x, y               float64
		cutoff, q, wetSend float64
	}{
		{0, 0, 100, 1, 0},
		{1, 1, 20000, 20, 0.5},
		{0.5, 0.5, 100 * math.Sqrt(200), 10.5, 0.25},
		{-1, 2, 100, 20, 0.5},
	}

	for _, tt := range tests {
		testutil.RequireNearlyEqual(t, "cutoff", FilterCutoff(tt.x), tt.cutoff, 1e-9)
		testutil.RequireNearlyEqual(t, "q", FilterResonance(tt.y), tt.q, 1e-12)
		testutil.RequireNearlyEqual(t, "wet", ReverbSend(tt.y), tt.wetSend, 1e-12)
	}
}

func TestDefaultChainIsTransparent(t *testing.T) {
	src := testutil.Sine(440, testRate, 0.5, 256)
	_, c := newTestChain(t, src)

	cutoff, q, wet := c.FilterState()
	if cutoff != OpenCutoffHz || q != DefaultQ || wet != 0 {
		t.Fatalf("defaults = %v %v %v", cutoff, q, wet)
	}

	for _, band := range []Band{BandLow, BandMid, BandHigh} {
		if c.EQGain(band) != 0 {
			t.Fatalf("%v gain = %v, want 0", band, c.EQGain(band))
		}
	}

	c.Player().Start(0)

	bus := block(256)
	c.Render(bus)

	testutil.RequireSliceNearlyEqual(t, bus[0], src, 1e-12)
	testutil.RequireSliceNearlyEqual(t, bus[1], src, 1e-12)

	if math.IsInf(c.MeterDB(), -1) {
		t.Fatal("meter still silent after signal")
	}
}

func TestSetEQClamps(t *testing.T) {
	_, c := newTestChain(t, testutil.DC(0, 8))

	c.SetEQ(BandLow, 30)
	c.SetEQ(BandMid, -30)
	c.SetEQ(BandHigh, 3)

	want := map[Band]float64{BandLow: 12, BandMid: -12, BandHigh: 3}
	for band, g := range want {
		if got := c.EQGain(band); got != g {
			t.Fatalf("%v = %v, want %v", band, got, g)
		}
	}
}

func TestEQCutAttenuatesLows(t *testing.T) {
	src := testutil.Sine(100, testRate, 0.5, 9600)
	_, c := newTestChain(t, src)

	c.SetEQ(BandLow, -12)
	if got := c.EQGain(BandLow); got != -12 {
		t.Fatalf("low gain = %v, want -12", got)
	}

	c.SetEQ(BandMid, math.NaN())
	if got := c.EQGain(BandMid); got != 0 {
		t.Fatalf("NaN mid gain = %v, want 0", got)
	}

	c.Player().Start(0)

	bus := block(9600)
	c.Render(bus)

	// The shelf sits two octaves above the tone, so the cut is nearly full.
	peak := testutil.Peak([][]float64{bus[0][4800:]})
	if peak > 0.5*core.DBToLinear(-9) || peak < 0.5*core.DBToLinear(-13) {
		t.Fatalf("100 Hz through -12 dB low shelf peak = %v", peak)
	}
}

func TestLowpassAttenuatesHighs(t *testing.T) {
	src := testutil.Sine(8000, testRate, 0.5, 4800)
	_, c := newTestChain(t, src)

	c.SetFilterEffect(0, 0) // 100 Hz
	c.Player().Start(0)

	bus := block(4800)
	c.Render(bus)

	if peak := testutil.Peak([][]float64{bus[0][2400:]}); peak > 0.01 {
		t.Fatalf("8 kHz through 100 Hz lowpass peak = %v", peak)
	}

	c.ResetEffects()
	if cutoff, _, wet := c.FilterState(); cutoff != OpenCutoffHz || wet != 0 {
		t.Fatalf("after reset cutoff=%v wet=%v", cutoff, wet)
	}
}

func TestDeckGainAndTap(t *testing.T) {
	_, c := newTestChain(t, testutil.DC(0.5, 512))

	tap := &recordingTap{}
	c.SetTap(tap)
	c.SetDeckGain(0.5)
	c.Player().Start(0)

	bus := block(128)
	c.Render(bus)

	if bus[0][10] != 0.25 {
		t.Fatalf("bus = %v, want 0.25", bus[0][10])
	}

	if tap.frames != 128 || tap.last != 0.25 {
		t.Fatalf("tap frames=%d last=%v", tap.frames, tap.last)
	}
}

func TestSwitchInputIsExclusive(t *testing.T) {
	_, c := newTestChain(t, testutil.DC(0.5, 4096))

	c.Player().Start(0)

	live := &closeCounter{value: 0.1}
	if err := c.SwitchInput(live); err != nil {
		t.Fatal(err)
	}

	if c.Player().Playing() {
		t.Fatal("file player still playing with live input")
	}

	bus := block(64)
	c.Render(bus)
	testutil.RequireNearlyEqual(t, "live sample", bus[0][5], 0.1, 1e-12)

	if err := c.DisableLive(); err != nil {
		t.Fatal(err)
	}

	if live.closed != 1 || c.Live() {
		t.Fatalf("closed=%d live=%v", live.closed, c.Live())
	}

	c.Player().Start(0)

	bus = block(64)
	c.Render(bus)
	testutil.RequireNearlyEqual(t, "file sample", bus[0][5], 0.5, 1e-12)
}

func TestOverlaySumsAtHead(t *testing.T) {
	g, c := newTestChain(t, testutil.DC(0.25, 1024))

	overlay, err := g.Backend().NewPlayer(c.Player().Buffer())
	if err != nil {
		t.Fatal(err)
	}

	c.Player().Start(0)
	overlay.Start(0)
	c.SetOverlay(overlay)

	bus := block(32)
	c.Render(bus)
	testutil.RequireNearlyEqual(t, "summed", bus[1][0], 0.5, 1e-12)

	c.SetOverlay(nil)
	if overlay.Buffer() != nil {
		t.Fatal("removed overlay was not closed")
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	pcm := newPCM(t, testRate, testutil.DC(0.5, 64))

	g, err := NewGraph(newTestBackend(t))
	if err != nil {
		t.Fatal(err)
	}

	c, err := g.Create(1, pcm)
	if err != nil {
		t.Fatal(err)
	}

	live := &closeCounter{}
	if err := c.SwitchInput(live); err != nil {
		t.Fatal(err)
	}

	c.Dispose()
	c.Dispose()

	if !c.Disposed() || live.closed != 1 {
		t.Fatalf("disposed=%v closed=%d", c.Disposed(), live.closed)
	}

	if pcm.Refs() != 1 {
		t.Fatalf("refs = %d, want 1", pcm.Refs())
	}

	// Operations on a disposed chain are inert.
	c.SetEQ(BandLow, 6)
	c.SetFilterEffect(1, 1)
	bus := core.NewBlock(2, 16)
	if c.Render(bus) {
		t.Fatal("disposed chain reported end")
	}

	if !math.IsInf(c.MeterDB(), -1) {
		t.Fatal("disposed meter not silent")
	}
}
