package mixer

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/cwbudde/algo-dj/dsp/buffer"
	"github.com/cwbudde/algo-dj/dsp/core"
	"github.com/cwbudde/algo-dj/dsp/effectchain"
	"github.com/cwbudde/algo-dj/dsp/transport"
)

// DeckID selects one of the two decks.
type DeckID int

const (
	DeckA DeckID = iota
	DeckB

	// NumDecks is the number of decks.
	NumDecks = 2
)

func (d DeckID) String() string {
	switch d {
	case DeckA:
		return "A"
	case DeckB:
		return "B"
	default:
		return fmt.Sprintf("deck(%d)", int(d))
	}
}

func (d DeckID) valid() bool { return d >= 0 && d < NumDecks }

func (d DeckID) other() DeckID { return 1 - d }

// Engine is the mixing engine. Create it with New.
type Engine struct {
	mu sync.Mutex

	cfg     Config
	log     *slog.Logger
	backend effectchain.Backend
	graph   *effectchain.Graph
	clock   *transport.Clock
	cache   *buffer.Cache
	sampler *sampler

	decks        [NumDecks]*deck
	crossfader   float64
	masterVolume float64

	events  chan Event
	reports sync.WaitGroup
	closed  bool
}

// New creates an engine with two empty decks, the crossfader centered and
// the master at unity.
func New(opts ...Option) (*Engine, error) {
	cfg := ApplyOptions(opts...)

	backend := cfg.Backend
	if backend == nil {
		native, err := effectchain.NewNative(effectchain.NewContext(
			core.WithSampleRate(cfg.SampleRate),
			core.WithChannels(cfg.Channels),
		), nil)
		if err != nil {
			return nil, fmt.Errorf("mixer: %w", err)
		}

		backend = native
	}

	cfg.SampleRate = backend.Context().SampleRate
	cfg.Channels = backend.Context().Channels

	graph, err := effectchain.NewGraph(backend)
	if err != nil {
		return nil, fmt.Errorf("mixer: %w", err)
	}

	clock, err := transport.New(cfg.SampleRate, cfg.TransportBPM)
	if err != nil {
		return nil, fmt.Errorf("mixer: %w", err)
	}

	e := &Engine{
		cfg:          cfg,
		log:          cfg.Logger,
		backend:      backend,
		graph:        graph,
		clock:        clock,
		cache:        buffer.NewCache(),
		sampler:      newSampler(backend),
		crossfader:   0.5,
		masterVolume: 1,
		events:       make(chan Event, cfg.EventBuffer),
	}

	for i := range e.decks {
		e.decks[i] = newDeck(DeckID(i))
	}

	e.graph.SetMasterGain(e.masterVolume)

	return e, nil
}

// SampleRate returns the output sample rate.
func (e *Engine) SampleRate() float64 { return e.cfg.SampleRate }

// Channels returns the output channel count.
func (e *Engine) Channels() int { return e.cfg.Channels }

// BlockSize returns the preferred render block size.
func (e *Engine) BlockSize() int { return e.cfg.BlockSize }

// Close tears down every deck and sample and waits for pending repository
// reports. The Events channel is closed.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}

	for _, d := range e.decks {
		e.teardown(d)
	}

	e.sampler.closeAll()
	e.graph.Close()
	e.closed = true
	close(e.events)
	e.mu.Unlock()

	e.reports.Wait()

	return nil
}

// Render fills out with the next block of the master mix. out is planar
// with Channels() channels of equal length. Scheduled transport events fire
// between sub-blocks exactly on their frame.
func (e *Engine) Render(out [][]float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		core.ZeroBlock(out)
		return
	}

	frames := core.Frames(out)
	e.clock.Advance(frames, func(start, end int) {
		ended := e.graph.Render(core.SliceBlock(out, start, end), e.sampler.render)
		for _, id := range ended {
			e.trackEnded(DeckID(id))
		}
	})

	for _, d := range e.decks {
		if d.rec != nil && d.rec.full && !d.rec.notified {
			d.rec.notified = true
			e.emit(Event{Kind: EventRecordingStopped, Deck: d.id})
		}
	}
}

// deck returns the deck for id, logging and returning nil when invalid.
// Caller holds e.mu.
func (e *Engine) deck(id DeckID, intent string) *deck {
	if e.closed {
		return nil
	}

	if !id.valid() {
		e.log.Debug("ignoring intent for unknown deck", "intent", intent, "deck", int(id))
		return nil
	}

	return e.decks[id]
}

func (e *Engine) ignore(d *deck, intent string) {
	e.log.Debug("ignoring intent", "intent", intent, "deck", d.id.String(), "status", d.status.String())
}

func (e *Engine) trackEnded(id DeckID) {
	d := e.decks[id]
	if d.status != StatusPlaying {
		return
	}

	e.cancelRoll(d, false)
	d.status = StatusStopped
	d.head = 0

	e.log.Debug("track ended", "deck", id.String())
	e.emit(Event{Kind: EventTrackEnded, Deck: id})
}

// teardown disposes a deck's chain and sessions and returns it to Empty.
// Caller holds e.mu.
func (e *Engine) teardown(d *deck) {
	e.cancelRoll(d, false)
	e.cancelRecording(d)

	if d.chain != nil {
		if p := d.chain.Player(); p != nil {
			p.Stop()
		}

		if e.graph.Chain(int(d.id)) == d.chain {
			e.graph.Dispose(int(d.id))
		} else {
			d.chain.Dispose()
		}

		d.chain = nil
	}

	if d.buf != nil {
		d.buf.Release()
		d.buf = nil
	}

	d.reset()
}
