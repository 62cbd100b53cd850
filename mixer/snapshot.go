package mixer

import (
	"context"
	"fmt"
	"math"
	"time"
)

// LoopRollState describes a deck's loop roll.
type LoopRollState struct {
	Active   bool
	Interval float64
}

// DeckState is a point-in-time view of one deck.
type DeckState struct {
	Deck        DeckID
	Status      DeckStatus
	Track       *Track
	IsPlaying   bool
	IsLiveInput bool
	Device      string

	Position     float64
	Duration     float64
	Volume       float64
	PlaybackRate float64
	EQ           EQ
	Effects      Effects

	Cue    float64
	HasCue bool

	// MeterDB is the pre-fader level in dBFS, -Inf when silent.
	MeterDB float64

	Samples     [SlotCount]*Sample
	IsRecording bool
	LoopRoll    LoopRollState
}

// TransportState describes the musical clock.
type TransportState struct {
	BPM     float64
	Beat    float64
	Pending int
}

// State is a point-in-time view of the engine.
type State struct {
	Decks         [NumDecks]DeckState
	Crossfader    float64
	MasterVolume  float64
	MasterLevelDB float64
	Transport     TransportState
}

// Snapshot returns the current engine state. Tracks are copies without
// their audio buffer.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := State{
		Crossfader:    e.crossfader,
		MasterVolume:  e.masterVolume,
		MasterLevelDB: math.Inf(-1),
		Transport: TransportState{
			BPM:     e.clock.BPM(),
			Beat:    e.clock.Position(),
			Pending: e.clock.Pending(),
		},
	}

	if !e.closed {
		s.MasterLevelDB = e.graph.MasterDB()
	}

	for i, d := range e.decks {
		s.Decks[i] = e.deckState(d)
	}

	return s
}

func (e *Engine) deckState(d *deck) DeckState {
	ds := DeckState{
		Deck:         d.id,
		Status:       d.status,
		IsPlaying:    d.status == StatusPlaying,
		IsLiveInput:  d.status == StatusLive,
		Device:       d.device,
		Position:     d.position(),
		Duration:     d.duration(),
		Volume:       d.volume,
		PlaybackRate: d.rate,
		EQ:           d.eq,
		Effects:      d.fx,
		Cue:          d.cue,
		HasCue:       d.hasCue,
		MeterDB:      math.Inf(-1),
		Samples:      e.sampler.samples(d.id),
		IsRecording:  d.rec != nil && !d.rec.full,
	}

	if d.track != nil {
		t := *d.track
		t.Buffer = nil
		ds.Track = &t
	}

	if d.chain != nil {
		ds.MeterDB = d.chain.MeterDB()
	}

	if d.roll != nil {
		ds.LoopRoll = LoopRollState{Active: true, Interval: d.roll.interval}
	}

	return ds
}

// Observe calls fn with a snapshot every interval until ctx is done or the
// engine is closed. It returns ctx.Err() or nil after Close.
func (e *Engine) Observe(ctx context.Context, every time.Duration, fn func(State)) error {
	if every <= 0 {
		return fmt.Errorf("mixer: observe interval must be > 0: %s", every)
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if e.isClosed() {
				return nil
			}

			fn(e.Snapshot())
		}
	}
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.closed
}
