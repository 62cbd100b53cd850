package mixer

import "time"

// EventKind classifies an engine event.
type EventKind int

const (
	// EventTrackLoaded fires when a load commits.
	EventTrackLoaded EventKind = iota
	// EventTrackEnded fires when a deck plays to the end of its track.
	EventTrackEnded
	// EventRecordingStopped fires when a recording reaches its length limit.
	EventRecordingStopped
	// EventTempoSynced fires when loading one deck changed the other deck's
	// playback rate. Rate holds the new rate.
	EventTempoSynced
)

func (k EventKind) String() string {
	switch k {
	case EventTrackLoaded:
		return "track-loaded"
	case EventTrackEnded:
		return "track-ended"
	case EventRecordingStopped:
		return "recording-stopped"
	case EventTempoSynced:
		return "tempo-synced"
	default:
		return "unknown"
	}
}

// Event is a notification from the engine.
type Event struct {
	Kind EventKind
	Deck DeckID
	Rate float64
	At   time.Time
}

// Events returns the event channel. Events are dropped when the channel is
// full; the channel is closed by Close.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// emit sends ev without blocking. Caller holds e.mu.
func (e *Engine) emit(ev Event) {
	if e.closed {
		return
	}

	ev.At = e.cfg.Clock.Now()

	select {
	case e.events <- ev:
	default:
		e.log.Debug("dropping event", "kind", ev.Kind.String(), "deck", ev.Deck.String())
	}
}
