package effectchain

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-dj/dsp/core"
	"github.com/cwbudde/algo-dj/dsp/effects/reverb"
	"github.com/cwbudde/algo-dj/dsp/filter/biquad"
	"github.com/cwbudde/algo-dj/dsp/filter/design"
	"github.com/cwbudde/algo-dj/measure/level"
)

// EQ corner frequencies and limits.
const (
	LowShelfHz  = 400.0
	MidPeakHz   = 1000.0
	HighShelfHz = 2500.0
	MidPeakQ    = 0.5
	MaxEQGainDB = 12.0

	shelfQ = 1 / math.Sqrt2
)

// Filter limits. A cutoff at or above OpenCutoffHz bypasses the filter.
const (
	MinCutoffHz  = 100.0
	OpenCutoffHz = 20000.0
	DefaultQ     = 1.0
)

type eqNode struct {
	sampleRate float64
	gains      [3]float64
	bands      [3]*biquad.Bank
}

func newEQNode(ctx Context) *eqNode {
	return &eqNode{
		sampleRate: ctx.SampleRate,
		bands:      [3]*biquad.Bank{newBank(ctx), newBank(ctx), newBank(ctx)},
	}
}

func (e *eqNode) SetGain(band Band, gainDB float64) {
	if band < BandLow || band > BandHigh {
		return
	}

	gainDB = clampEQGain(gainDB)
	e.gains[band] = gainDB

	if gainDB == 0 {
		e.bands[band].SetCoefficients(biquad.Identity())
		e.bands[band].Reset()

		return
	}

	e.bands[band].SetCoefficients(BandCoefficients(band, gainDB, e.sampleRate))
}

func (e *eqNode) Gain(band Band) float64 {
	if band < BandLow || band > BandHigh {
		return 0
	}

	return e.gains[band]
}

func (e *eqNode) Process(block [][]float64) {
	for i, g := range e.gains {
		if g != 0 {
			e.bands[i].Process(block)
		}
	}
}

type filterNode struct {
	sampleRate float64
	cutoff     float64
	q          float64
	bank       *biquad.Bank
}

func newFilterNode(ctx Context) *filterNode {
	f := &filterNode{sampleRate: ctx.SampleRate, bank: newBank(ctx)}
	f.SetLowpass(OpenCutoffHz, DefaultQ)

	return f
}

func (f *filterNode) SetLowpass(cutoffHz, q float64) {
	if math.IsNaN(cutoffHz) {
		cutoffHz = OpenCutoffHz
	}

	if q <= 0 || math.IsNaN(q) {
		q = DefaultQ
	}

	f.cutoff = core.Clamp(cutoffHz, MinCutoffHz, OpenCutoffHz)
	f.q = q

	if f.open() {
		f.bank.Reset()
		return
	}

	f.bank.SetCoefficients(design.Lowpass(f.cutoff, f.q, f.sampleRate))
}

func (f *filterNode) open() bool { return f.cutoff >= OpenCutoffHz }

func (f *filterNode) Cutoff() float64 { return f.cutoff }

func (f *filterNode) Q() float64 { return f.q }

func (f *filterNode) Process(block [][]float64) {
	if f.open() {
		return
	}

	f.bank.Process(block)
}

type reverbNode struct {
	fx *reverb.Reverb
}

func (r *reverbNode) SetWet(wet float64) {
	wasWet := r.fx.Wet() > 0
	r.fx.SetWet(wet)

	if wasWet && r.fx.Wet() == 0 {
		r.fx.Reset()
	}
}

func (r *reverbNode) Wet() float64 { return r.fx.Wet() }

func (r *reverbNode) Process(block [][]float64) {
	if r.fx.Wet() == 0 {
		return
	}

	r.fx.Process(block)
}

type meterNode struct {
	m *level.Meter
}

func (m *meterNode) Process(block [][]float64) { m.m.Process(block) }

func (m *meterNode) DB() float64 { return m.m.DB() }

func (m *meterNode) Reset() { m.m.Reset() }

type gainNode struct {
	gain float64
}

func (g *gainNode) SetGain(linear float64) {
	if math.IsNaN(linear) || linear < 0 {
		linear = 0
	}

	g.gain = linear
}

func (g *gainNode) Gain() float64 { return g.gain }

func (g *gainNode) Process(block [][]float64) {
	if g.gain == 1 {
		return
	}

	for _, ch := range block {
		vecmath.ScaleBlockInPlace(ch, g.gain)
	}
}
