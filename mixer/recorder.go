package mixer

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-dj/dsp/buffer"
	"github.com/cwbudde/algo-dj/dsp/core"
)

// recording captures a deck's output up to a frame limit.
type recording struct {
	data      [][]float64
	maxFrames int
	started   time.Time

	full     bool
	notified bool
}

func newRecording(channels, maxFrames int, started time.Time) *recording {
	return &recording{
		data:      make([][]float64, channels),
		maxFrames: maxFrames,
		started:   started,
	}
}

func (r *recording) frames() int { return core.Frames(r.data) }

// Write appends block, stopping once the limit is reached.
func (r *recording) Write(block [][]float64) {
	if r.full || len(block) == 0 {
		return
	}

	n := core.Frames(block)
	if room := r.maxFrames - r.frames(); n >= room {
		n = room
		r.full = true
	}

	for ch := range r.data {
		r.data[ch] = append(r.data[ch], block[min(ch, len(block)-1)][:n]...)
	}
}

// StartRecording taps the deck's output. Recording a deck that is already
// recording is a no-op.
func (e *Engine) StartRecording(id DeckID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.deck(id, "start-recording")
	if d == nil {
		return
	}

	if d.chain == nil || d.rec != nil {
		e.ignore(d, "start-recording")
		return
	}

	maxFrames := int(e.cfg.MaxRecording.Seconds() * e.cfg.SampleRate)
	d.rec = newRecording(e.cfg.Channels, maxFrames, e.cfg.Clock.Now())
	d.chain.SetTap(d.rec)

	e.log.Debug("recording started", "deck", id.String(), "max_frames", maxFrames)
}

// StopRecording ends the deck's recording and places the captured audio in
// the deck's first free pad.
func (e *Engine) StopRecording(id DeckID) (Sample, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return Sample{}, ErrClosed
	}

	if !id.valid() {
		return Sample{}, fmt.Errorf("%w: unknown deck %d", ErrInvalidState, int(id))
	}

	d := e.decks[id]
	rec := d.rec
	if rec == nil {
		return Sample{}, fmt.Errorf("%w: deck %s is not recording", ErrInvalidState, id)
	}

	e.cancelRecording(d)

	if rec.frames() == 0 {
		return Sample{}, ErrEmptyRecording
	}

	buf, err := buffer.NewPCM(rec.data, e.cfg.SampleRate)
	if err != nil {
		return Sample{}, fmt.Errorf("mixer: %w", err)
	}

	name := fmt.Sprintf("Deck %s %s", id, rec.started.Format("15:04:05"))

	smp, err := e.sampler.add(id, buf, name)
	if err != nil {
		return Sample{}, err
	}

	e.log.Info("recording saved", "deck", id.String(), "slot", smp.Slot, "seconds", smp.Duration)

	return smp, nil
}

// cancelRecording detaches the tap and drops the session. Caller holds e.mu.
func (e *Engine) cancelRecording(d *deck) {
	if d.rec == nil {
		return
	}

	if d.chain != nil {
		d.chain.SetTap(nil)
	}

	d.rec = nil
}
