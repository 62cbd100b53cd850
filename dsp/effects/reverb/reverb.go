package reverb

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dj/dsp/core"
)

const (
	numCombs     = 8
	numAllpasses = 4

	fixedGain       = 0.015
	allpassFeedback = 0.5
	stereoSpread    = 23
	referenceRate   = 44100.0
	defaultDecay    = 2.0
	defaultDamp     = 0.2
)

// Tunings in samples at 44.1 kHz.
var (
	combTuning    = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allpassTuning = [numAllpasses]int{556, 441, 341, 225}
)

// Reverb is a stereo algorithmic reverb with a linear dry/wet mix:
// out = (1-wet)*x + wet*tail.
type Reverb struct {
	sampleRate float64
	decay      float64
	damp       float64
	wet        float64

	lanes [2]lane
}

type lane struct {
	combs   [numCombs]comb
	allpass [numAllpasses]allpass
}

type allpass struct {
	buffer []float64
	index  int
}

func (a *allpass) process(input float64) float64 {
	bufOut := a.buffer[a.index]
	output := bufOut - input
	a.buffer[a.index] = input + bufOut*allpassFeedback

	a.index++
	if a.index >= len(a.buffer) {
		a.index = 0
	}

	return output
}

type comb struct {
	feedback    float64
	filterStore float64
	dampA       float64
	dampB       float64
	buffer      []float64
	index       int
}

func (c *comb) process(input float64) float64 {
	output := c.buffer[c.index]
	c.filterStore = core.FlushDenormals(output*c.dampB + c.filterStore*c.dampA)
	c.buffer[c.index] = input + c.filterStore*c.feedback

	c.index++
	if c.index >= len(c.buffer) {
		c.index = 0
	}

	return output
}

// New returns a dry reverb (wet 0) with a 2 s decay at sampleRate.
func New(sampleRate float64) (*Reverb, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("reverb sample rate must be > 0: %f", sampleRate)
	}

	r := &Reverb{
		sampleRate: sampleRate,
		decay:      defaultDecay,
		damp:       defaultDamp,
	}

	scale := sampleRate / referenceRate
	for ch := range r.lanes {
		spread := ch * stereoSpread

		for i := range r.lanes[ch].combs {
			r.lanes[ch].combs[i].buffer = make([]float64, scaled(combTuning[i]+spread, scale))
		}

		for i := range r.lanes[ch].allpass {
			r.lanes[ch].allpass[i].buffer = make([]float64, scaled(allpassTuning[i]+spread, scale))
		}
	}

	r.updateCombs()

	return r, nil
}

func scaled(n int, scale float64) int {
	return max(1, int(math.Round(float64(n)*scale)))
}

// SetDecay sets the time in seconds for the tail to fall by 60 dB.
func (r *Reverb) SetDecay(seconds float64) error {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Errorf("reverb decay must be > 0: %f", seconds)
	}

	r.decay = seconds
	r.updateCombs()

	return nil
}

// SetDamp sets high-frequency damping inside the comb feedback in [0,1].
func (r *Reverb) SetDamp(v float64) error {
	if v < 0 || v > 1 || math.IsNaN(v) {
		return fmt.Errorf("reverb damp must be in [0,1]: %f", v)
	}

	r.damp = v
	r.updateCombs()

	return nil
}

// SetWet sets the dry/wet balance, clamped to [0,1].
func (r *Reverb) SetWet(v float64) {
	r.wet = core.Clamp(core.Unit(v), 0, 1)
}

// Decay returns the decay time in seconds.
func (r *Reverb) Decay() float64 { return r.decay }

// Damp returns the damping amount.
func (r *Reverb) Damp() float64 { return r.damp }

// Wet returns the wet amount.
func (r *Reverb) Wet() float64 { return r.wet }

// SampleRate returns the configured sample rate.
func (r *Reverb) SampleRate() float64 { return r.sampleRate }

// CombFeedback returns the feedback gain of comb i on channel ch.
func (r *Reverb) CombFeedback(ch, i int) float64 {
	return r.lanes[ch].combs[i].feedback
}

func (r *Reverb) updateCombs() {
	for ch := range r.lanes {
		for i := range r.lanes[ch].combs {
			c := &r.lanes[ch].combs[i]
			delaySeconds := float64(len(c.buffer)) / r.sampleRate
			c.feedback = math.Pow(10, -3*delaySeconds/r.decay)
			c.dampA = r.damp
			c.dampB = 1 - r.damp
		}
	}
}

// Reset clears all delay and filter state.
func (r *Reverb) Reset() {
	for ch := range r.lanes {
		for i := range r.lanes[ch].combs {
			c := &r.lanes[ch].combs[i]
			clear(c.buffer)
			c.index = 0
			c.filterStore = 0
		}

		for i := range r.lanes[ch].allpass {
			clear(r.lanes[ch].allpass[i].buffer)
			r.lanes[ch].allpass[i].index = 0
		}
	}
}

// ProcessSample runs one sample through channel ch (0 or 1).
func (r *Reverb) ProcessSample(ch int, input float64) float64 {
	l := &r.lanes[ch&1]
	x := fixedGain * input

	var acc float64
	for i := range l.combs {
		acc += l.combs[i].process(x)
	}

	for i := range l.allpass {
		acc = l.allpass[i].process(acc)
	}

	return (1-r.wet)*input + r.wet*acc
}

// Process applies the reverb to a planar block in place. A mono block uses
// the left lane only; channels past the second are left untouched.
func (r *Reverb) Process(block [][]float64) {
	for ch := 0; ch < len(block) && ch < len(r.lanes); ch++ {
		buf := block[ch]
		for i := range buf {
			buf[i] = r.ProcessSample(ch, buf[i])
		}
	}
}
