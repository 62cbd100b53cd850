package effectchain

import (
	"sort"

	"github.com/cwbudde/algo-dj/dsp/buffer"
	"github.com/cwbudde/algo-dj/dsp/core"
)

// Graph owns the deck chains and the master bus.
type Graph struct {
	backend Backend
	pool    *buffer.Pool
	chains  map[int]*Chain
	order   []int

	masterGain  Gain
	masterMeter Meter
}

// NewGraph builds an empty graph with unity master gain.
func NewGraph(backend Backend) (*Graph, error) {
	gain, err := backend.NewGain()
	if err != nil {
		return nil, err
	}

	meter, err := backend.NewMeter()
	if err != nil {
		return nil, err
	}

	return &Graph{
		backend:     backend,
		pool:        buffer.NewPool(),
		chains:      make(map[int]*Chain),
		masterGain:  gain,
		masterMeter: meter,
	}, nil
}

// Backend returns the node backend.
func (g *Graph) Backend() Backend { return g.backend }

// Create builds a fresh chain for deckID playing buf and then disposes the
// chain it replaces. On error the existing chain is left in place. buf may
// be nil for a chain fed only by live input. The chain retains its own
// reference to buf.
func (g *Graph) Create(deckID int, buf *buffer.PCM) (*Chain, error) {
	c, err := newChain(g.backend, g.pool, deckID, buf)
	if err != nil {
		return nil, err
	}

	g.Dispose(deckID)
	g.chains[deckID] = c
	g.order = append(g.order, deckID)
	sort.Ints(g.order)

	return c, nil
}

// Chain returns the chain of deckID or nil.
func (g *Graph) Chain(deckID int) *Chain { return g.chains[deckID] }

// Len returns the number of live chains.
func (g *Graph) Len() int { return len(g.chains) }

// Dispose tears down the chain of deckID. A missing chain is a no-op.
func (g *Graph) Dispose(deckID int) {
	c := g.chains[deckID]
	if c == nil {
		return
	}

	c.Dispose()
	delete(g.chains, deckID)

	for i, id := range g.order {
		if id == deckID {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// Close disposes every chain.
func (g *Graph) Close() {
	for _, id := range append([]int(nil), g.order...) {
		g.Dispose(id)
	}
}

// SetMasterGain overwrites the master gain.
func (g *Graph) SetMasterGain(linear float64) { g.masterGain.SetGain(linear) }

// MasterGain returns the master gain.
func (g *Graph) MasterGain() float64 { return g.masterGain.Gain() }

// MasterDB returns the post-gain master level, -Inf when silent.
func (g *Graph) MasterDB() float64 { return g.masterMeter.DB() }

// Render overwrites out with one block of the mix: every chain in deck
// order, then each send, then master gain and the master meter. It returns
// the decks whose file player reached its end in this block.
func (g *Graph) Render(out [][]float64, sends ...func(bus [][]float64)) (ended []int) {
	core.ZeroBlock(out)

	if core.Frames(out) == 0 {
		return nil
	}

	for _, id := range g.order {
		if g.chains[id].Render(out) {
			ended = append(ended, id)
		}
	}

	for _, send := range sends {
		if send != nil {
			send(out)
		}
	}

	g.masterGain.Process(out)
	g.masterMeter.Process(out)

	return ended
}

// DeckMeters returns each chain's level keyed by deck id.
func (g *Graph) DeckMeters() map[int]float64 {
	out := make(map[int]float64, len(g.chains))
	for id, c := range g.chains {
		out[id] = c.MeterDB()
	}

	return out
}
