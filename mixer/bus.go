package mixer

import (
	"math"

	"github.com/cwbudde/algo-dj/dsp/core"
	"github.com/cwbudde/algo-dj/dsp/effectchain"
)

// CrossfadeGains returns the constant-power multipliers for crossfader
// position p in [0,1], where 0 is all deck A.
func CrossfadeGains(p float64) (a, b float64) {
	p = core.Clamp(core.Unit(p), 0, 1)

	return math.Cos(p * math.Pi / 2), math.Cos((1 - p) * math.Pi / 2)
}

// CrossfadeGain returns the multiplier of one deck at position p.
func CrossfadeGain(id DeckID, p float64) float64 {
	a, b := CrossfadeGains(p)
	if id == DeckB {
		return b
	}

	return a
}

// SetCrossfader moves the crossfader and recomputes both deck gains.
func (e *Engine) SetCrossfader(p float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || math.IsNaN(p) {
		return
	}

	e.crossfader = core.Clamp(p, 0, 1)
	e.applyGains()
}

// SetVolume sets a deck fader in [0,1] and recomputes its gain.
func (e *Engine) SetVolume(id DeckID, volume float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.deck(id, "set-volume")
	if d == nil || math.IsNaN(volume) {
		return
	}

	d.volume = core.Clamp(volume, 0, 1)
	e.applyGains()
}

// SetMasterVolume overwrites the master gain, clamped to [0,1].
func (e *Engine) SetMasterVolume(level float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || math.IsNaN(level) {
		return
	}

	e.masterVolume = core.Clamp(level, 0, 1)
	e.graph.SetMasterGain(e.masterVolume)
}

// applyGains sets every chain's gain to fader x crossfade multiplier.
// Caller holds e.mu.
func (e *Engine) applyGains() {
	for _, d := range e.decks {
		if d.chain != nil {
			d.chain.SetDeckGain(d.volume * CrossfadeGain(d.id, e.crossfader))
		}
	}
}

// EQResponse returns the deck's current EQ magnitude response in dB at each
// frequency.
func (e *Engine) EQResponse(id DeckID, freqs []float64) []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !id.valid() {
		return make([]float64, len(freqs))
	}

	eq := e.decks[id].eq

	return effectchain.EQResponseDB([3]float64{eq.Low, eq.Mid, eq.High}, e.cfg.SampleRate, freqs)
}
