package mixer

import (
	"math"

	"github.com/cwbudde/algo-dj/dsp/buffer"
	"github.com/cwbudde/algo-dj/dsp/core"
	"github.com/cwbudde/algo-dj/dsp/effectchain"
)

// DeckStatus is the playback state of a deck.
type DeckStatus int

const (
	StatusEmpty DeckStatus = iota
	StatusStopped
	StatusPlaying
	StatusPaused
	StatusLive
)

func (s DeckStatus) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusStopped:
		return "stopped"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusLive:
		return "live"
	default:
		return "unknown"
	}
}

func (s DeckStatus) loaded() bool {
	return s == StatusStopped || s == StatusPlaying || s == StatusPaused
}

// EQ holds the three band gains in dB.
type EQ struct {
	Low, Mid, High float64
}

// Effects is the XY effect pad state.
type Effects struct {
	X, Y   float64
	Active bool
}

type deck struct {
	id     DeckID
	status DeckStatus

	track *Track
	buf   *buffer.PCM
	chain *effectchain.Chain

	head   float64 // seconds, valid while not playing
	rate   float64
	volume float64
	eq     EQ
	fx     Effects

	cue    float64
	hasCue bool

	gen      uint64
	reported bool
	device   string

	rec  *recording
	roll *loopRoll
}

func newDeck(id DeckID) *deck {
	return &deck{id: id, rate: 1, volume: 1}
}

// reset returns a torn-down deck to Empty. The fader survives.
func (d *deck) reset() {
	d.status = StatusEmpty
	d.track = nil
	d.head = 0
	d.rate = 1
	d.eq = EQ{}
	d.fx = Effects{}
	d.cue, d.hasCue = 0, false
	d.reported = false
	d.device = ""
}

func (d *deck) player() effectchain.Player {
	if d.chain == nil {
		return nil
	}

	return d.chain.Player()
}

func (d *deck) duration() float64 {
	if d.track == nil {
		return 0
	}

	return d.track.Duration
}

// position returns the play head in seconds.
func (d *deck) position() float64 {
	if d.status == StatusPlaying {
		if p := d.player(); p != nil {
			return p.Position()
		}
	}

	return d.head
}

// Play starts or resumes playback at the kept play head.
func (e *Engine) Play(id DeckID) {
	var update *TrackUpdate

	e.mu.Lock()
	if d := e.deck(id, "play"); d != nil {
		update = e.play(d)
	}
	e.mu.Unlock()

	if update != nil {
		e.report(*update)
	}
}

func (e *Engine) play(d *deck) *TrackUpdate {
	if d.status != StatusStopped && d.status != StatusPaused {
		e.ignore(d, "play")
		return nil
	}

	p := d.player()
	if p == nil {
		return nil
	}

	if d.head >= d.duration() {
		d.head = 0
	}

	p.SetRate(d.rate)
	p.Start(d.head)
	d.status = StatusPlaying

	if d.reported || d.track == nil || d.track.ID == "" {
		return nil
	}

	d.reported = true
	now := e.cfg.Clock.Now()

	return &TrackUpdate{ID: d.track.ID, LastPlayed: &now}
}

// Pause stops the player and keeps the play head.
func (e *Engine) Pause(id DeckID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.deck(id, "pause")
	if d == nil {
		return
	}

	e.pause(d)
}

func (e *Engine) pause(d *deck) {
	if d.status != StatusPlaying {
		e.ignore(d, "pause")
		return
	}

	e.cancelRoll(d, false)

	p := d.player()
	d.head = p.Position()
	p.Stop()
	d.status = StatusPaused
}

// Stop stops playback and rewinds to the cue point, or to 0 without one.
func (e *Engine) Stop(id DeckID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.deck(id, "stop")
	if d == nil {
		return
	}

	if !d.status.loaded() {
		e.ignore(d, "stop")
		return
	}

	e.cancelRoll(d, false)
	d.player().Stop()
	d.status = StatusStopped
	d.head = 0

	if d.hasCue {
		d.head = d.cue
	}
}

// TogglePlay pauses a playing deck and plays a stopped or paused one.
func (e *Engine) TogglePlay(id DeckID) {
	var update *TrackUpdate

	e.mu.Lock()
	if d := e.deck(id, "toggle-play"); d != nil {
		if d.status == StatusPlaying {
			e.pause(d)
		} else {
			update = e.play(d)
		}
	}
	e.mu.Unlock()

	if update != nil {
		e.report(*update)
	}
}

// Seek moves the play head, clamped to the track. A playing deck restarts
// from the new offset.
func (e *Engine) Seek(id DeckID, seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.deck(id, "seek")
	if d == nil {
		return
	}

	e.seek(d, seconds)
}

func (e *Engine) seek(d *deck, seconds float64) {
	if !d.status.loaded() || math.IsNaN(seconds) {
		e.ignore(d, "seek")
		return
	}

	seconds = core.Clamp(seconds, 0, d.duration())

	if d.status == StatusPlaying {
		e.cancelRoll(d, false)
		d.player().Start(seconds)

		return
	}

	d.head = seconds
}

// SetTempo sets the playback rate. Pitch follows the rate.
func (e *Engine) SetTempo(id DeckID, rate float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.deck(id, "set-tempo")
	if d == nil {
		return
	}

	e.setRate(d, rate)
}

func (e *Engine) setRate(d *deck, rate float64) bool {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) || !d.status.loaded() {
		e.ignore(d, "set-tempo")
		return false
	}

	d.rate = rate
	d.player().SetRate(rate)

	if roll := d.roll; roll != nil {
		roll.overlay.SetRate(rate)
		roll.overlay.SetLoop(roll.t0, roll.t0+e.rollWindow(roll.interval, rate))
	}

	return true
}

// SetCue stores the current play head as the cue point.
func (e *Engine) SetCue(id DeckID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.deck(id, "set-cue")
	if d == nil {
		return
	}

	if !d.status.loaded() {
		e.ignore(d, "set-cue")
		return
	}

	d.cue, d.hasCue = d.position(), true
}

// JumpToCue seeks to the cue point, or to 0 without one.
func (e *Engine) JumpToCue(id DeckID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.deck(id, "jump-to-cue")
	if d == nil {
		return
	}

	e.seek(d, d.cue)
}

// SetEQ sets one band's gain in dB, clamped to +/-12.
func (e *Engine) SetEQ(id DeckID, band effectchain.Band, gainDB float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.deck(id, "set-eq")
	if d == nil {
		return
	}

	if math.IsNaN(gainDB) || band < effectchain.BandLow || band > effectchain.BandHigh {
		e.ignore(d, "set-eq")
		return
	}

	gainDB = core.Clamp(gainDB, -effectchain.MaxEQGainDB, effectchain.MaxEQGainDB)

	switch band {
	case effectchain.BandLow:
		d.eq.Low = gainDB
	case effectchain.BandMid:
		d.eq.Mid = gainDB
	case effectchain.BandHigh:
		d.eq.High = gainDB
	}

	if d.chain != nil {
		d.chain.SetEQ(band, gainDB)
	}
}

// SetEffects sets the XY pad. An inactive pad resets the filter and reverb.
func (e *Engine) SetEffects(id DeckID, x, y float64, active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.deck(id, "set-effects")
	if d == nil {
		return
	}

	d.fx = Effects{
		X:      core.Clamp(core.Unit(x), 0, 1),
		Y:      core.Clamp(core.Unit(y), 0, 1),
		Active: active,
	}

	if d.chain == nil {
		return
	}

	if active {
		d.chain.SetFilterEffect(d.fx.X, d.fx.Y)
	} else {
		d.chain.ResetEffects()
	}
}

// applySettings pushes the deck's stored EQ and effects into a fresh chain.
func (e *Engine) applySettings(d *deck) {
	d.chain.SetEQ(effectchain.BandLow, d.eq.Low)
	d.chain.SetEQ(effectchain.BandMid, d.eq.Mid)
	d.chain.SetEQ(effectchain.BandHigh, d.eq.High)

	if d.fx.Active {
		d.chain.SetFilterEffect(d.fx.X, d.fx.Y)
	} else {
		d.chain.ResetEffects()
	}

	e.applyGains()
}
