package mixer

import (
	"math"

	"github.com/cwbudde/algo-dj/dsp/effectchain"
	"github.com/cwbudde/algo-dj/dsp/transport"
)

// RollIntervals are the loop-roll lengths in beats.
var RollIntervals = [...]float64{0.25, 0.5, 1, 2}

func validInterval(beats float64) bool {
	for _, v := range RollIntervals {
		if beats == v {
			return true
		}
	}

	return false
}

type loopRoll struct {
	interval float64
	t0       float64 // seconds into the track
	overlay  effectchain.Player
	event    transport.EventID
}

// StartLoopRoll repeats the interval beats following the current play head
// while the main player runs on muted. Repeats start on the next 1/16 note
// of the transport. A running roll on the deck is stopped first.
func (e *Engine) StartLoopRoll(id DeckID, interval float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.deck(id, "start-loop-roll")
	if d == nil {
		return
	}

	if d.status != StatusPlaying || !validInterval(interval) {
		e.ignore(d, "start-loop-roll")
		return
	}

	e.cancelRoll(d, true)

	player := d.player()
	t0 := player.Position()

	overlay, err := e.backend.NewPlayer(d.buf)
	if err != nil {
		e.log.Warn("loop roll unavailable", "deck", id.String(), "error", err)
		return
	}

	overlay.SetRate(d.rate)
	overlay.SetLoop(t0, t0+e.rollWindow(interval, d.rate))
	d.chain.SetOverlay(overlay)
	player.SetVolume(0)

	roll := &loopRoll{interval: interval, t0: t0, overlay: overlay}
	roll.event = e.clock.Schedule(e.clock.NextBoundary(transport.Sixteenth), interval, func() {
		roll.overlay.Start(roll.t0)
	})
	d.roll = roll

	e.log.Debug("loop roll started", "deck", id.String(), "interval", interval, "t0", t0)
}

// rollWindow returns the buffer seconds a player at rate covers in interval
// beats of the transport.
func (e *Engine) rollWindow(interval, rate float64) float64 {
	return e.clock.Seconds(interval) * rate
}

// StopLoopRoll ends the roll and snaps the main player back to where the
// roll began.
func (e *Engine) StopLoopRoll(id DeckID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.deck(id, "stop-loop-roll")
	if d == nil {
		return
	}

	if d.roll == nil {
		e.ignore(d, "stop-loop-roll")
		return
	}

	e.cancelRoll(d, true)
}

// cancelRoll clears the scheduled repeat, drops the overlay and unmutes
// the main player. With restart the main player jumps back to t0.
// Caller holds e.mu.
func (e *Engine) cancelRoll(d *deck, restart bool) {
	roll := d.roll
	if roll == nil {
		return
	}

	d.roll = nil
	e.clock.Clear(roll.event)

	if d.chain != nil {
		d.chain.SetOverlay(nil)
	} else {
		roll.overlay.Close()
	}

	player := d.player()
	if player == nil {
		return
	}

	player.SetVolume(1)

	if restart && d.status == StatusPlaying {
		player.Start(roll.t0)
	}

	e.log.Debug("loop roll stopped", "deck", d.id.String(), "restart", restart)
}

// SetTransportBPM sets the tempo of the musical clock. Loading a track with
// a known tempo overrides it.
func (e *Engine) SetTransportBPM(bpm float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return
	}

	e.clock.SetBPM(bpm)
}
