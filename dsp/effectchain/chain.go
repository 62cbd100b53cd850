package effectchain

import (
	"errors"
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-dj/dsp/buffer"
	"github.com/cwbudde/algo-dj/dsp/core"
)

// ErrDisposed is returned by operations on a disposed chain.
var ErrDisposed = errors.New("effectchain: chain disposed")

// Filter effect mapping.
const (
	filterSweepRatio = 200.0 // 100 Hz * 200 = 20 kHz
	maxWetSend       = 0.5
	maxResonanceQ    = 20.0
)

// FilterCutoff maps x in [0,1] exponentially onto 100 Hz..20 kHz.
func FilterCutoff(x float64) float64 {
	return MinCutoffHz * math.Pow(filterSweepRatio, core.Clamp(core.Unit(x), 0, 1))
}

// FilterResonance maps y in [0,1] onto Q 1..20.
func FilterResonance(y float64) float64 {
	return DefaultQ + (maxResonanceQ-DefaultQ)*core.Clamp(core.Unit(y), 0, 1)
}

// ReverbSend maps y in [0,1] onto a reverb wet amount of 0..0.5.
func ReverbSend(y float64) float64 {
	return maxWetSend * core.Clamp(core.Unit(y), 0, 1)
}

// Chain is one deck's signal path.
type Chain struct {
	deckID int

	player  Player
	live    LiveInput
	overlay Player

	eq     EQ
	filter Filter
	reverb Reverb
	meter  Meter
	gain   Gain
	tap    Tap

	pool     *buffer.Pool
	channels int
	disposed bool
}

func newChain(b Backend, pool *buffer.Pool, deckID int, buf *buffer.PCM) (*Chain, error) {
	c := &Chain{deckID: deckID, pool: pool, channels: b.Context().Channels}

	var err error
	if buf != nil {
		if c.player, err = b.NewPlayer(buf); err != nil {
			return nil, err
		}
	}

	if c.eq, err = b.NewEQ(); err != nil {
		return nil, c.abort(err)
	}

	if c.filter, err = b.NewFilter(); err != nil {
		return nil, c.abort(err)
	}

	if c.reverb, err = b.NewReverb(); err != nil {
		return nil, c.abort(err)
	}

	if c.meter, err = b.NewMeter(); err != nil {
		return nil, c.abort(err)
	}

	if c.gain, err = b.NewGain(); err != nil {
		return nil, c.abort(err)
	}

	c.ResetEffects()

	return c, nil
}

func (c *Chain) abort(err error) error {
	c.Dispose()
	return fmt.Errorf("effectchain: build chain for deck %d: %w", c.deckID, err)
}

// DeckID returns the deck this chain belongs to.
func (c *Chain) DeckID() int { return c.deckID }

// Player returns the file player, nil for a chain built without a buffer.
func (c *Chain) Player() Player { return c.player }

// Live reports whether a capture stream feeds the chain.
func (c *Chain) Live() bool { return c.live != nil }

// Disposed reports whether Dispose was called.
func (c *Chain) Disposed() bool { return c.disposed }

// SetEQ sets one band's gain, clamped to +/-12 dB.
func (c *Chain) SetEQ(band Band, gainDB float64) {
	if c.disposed {
		return
	}

	c.eq.SetGain(band, gainDB)
}

// EQGain returns one band's gain in dB.
func (c *Chain) EQGain(band Band) float64 {
	if c.disposed {
		return 0
	}

	return c.eq.Gain(band)
}

// SetFilterEffect maps the XY pad: x sweeps the lowpass cutoff, y raises
// resonance and the reverb send together.
func (c *Chain) SetFilterEffect(x, y float64) {
	if c.disposed {
		return
	}

	c.filter.SetLowpass(FilterCutoff(x), FilterResonance(y))
	c.reverb.SetWet(ReverbSend(y))
}

// ResetEffects opens the filter and dries the reverb.
func (c *Chain) ResetEffects() {
	if c.disposed {
		return
	}

	c.filter.SetLowpass(OpenCutoffHz, DefaultQ)
	c.reverb.SetWet(0)
}

// FilterState returns the lowpass cutoff, Q and reverb wet amount.
func (c *Chain) FilterState() (cutoff, q, wet float64) {
	if c.disposed {
		return OpenCutoffHz, DefaultQ, 0
	}

	return c.filter.Cutoff(), c.filter.Q(), c.reverb.Wet()
}

// SetDeckGain sets the linear deck output gain.
func (c *Chain) SetDeckGain(linear float64) {
	if c.disposed {
		return
	}

	c.gain.SetGain(linear)
}

// DeckGain returns the linear deck output gain.
func (c *Chain) DeckGain() float64 {
	if c.disposed {
		return 0
	}

	return c.gain.Gain()
}

// MeterDB returns the pre-fader level in dBFS, -Inf when silent.
func (c *Chain) MeterDB() float64 {
	if c.disposed {
		return math.Inf(-1)
	}

	return c.meter.DB()
}

// SwitchInput detaches the file player from the chain head and feeds live
// instead. The player is stopped but kept. A previous live input is closed.
func (c *Chain) SwitchInput(live LiveInput) error {
	if c.disposed {
		if live != nil {
			_ = live.Close()
		}

		return ErrDisposed
	}

	if live == nil {
		return c.DisableLive()
	}

	if c.player != nil {
		c.player.Stop()
	}

	var err error
	if c.live != nil {
		err = c.live.Close()
	}

	c.live = live

	return err
}

// DisableLive closes the capture stream and reattaches the file player.
func (c *Chain) DisableLive() error {
	if c.live == nil {
		return nil
	}

	err := c.live.Close()
	c.live = nil
	c.meter.Reset()

	return err
}

// SetOverlay installs a transient source summed at the chain head. The
// previous overlay is closed. nil removes it.
func (c *Chain) SetOverlay(p Player) {
	if c.overlay != nil && c.overlay != p {
		c.overlay.Close()
	}

	if c.disposed {
		if p != nil {
			p.Close()
		}

		c.overlay = nil

		return
	}

	c.overlay = p
}

// Overlay returns the current overlay player.
func (c *Chain) Overlay() Player { return c.overlay }

// SetTap installs a tap on the deck output. nil removes it.
func (c *Chain) SetTap(t Tap) {
	if c.disposed {
		return
	}

	c.tap = t
}

// Render adds the chain output into bus and reports whether the file player
// reached its end.
func (c *Chain) Render(bus [][]float64) (ended bool) {
	if c.disposed || len(bus) == 0 {
		return false
	}

	scratch := c.pool.Get(c.channels, core.Frames(bus))
	defer c.pool.Put(scratch)

	block := scratch.Data

	switch {
	case c.live != nil:
		c.live.Render(block)
	case c.player != nil:
		ended = c.player.Render(block)
	}

	if c.overlay != nil {
		c.overlay.Render(block)
	}

	c.eq.Process(block)
	c.filter.Process(block)
	c.reverb.Process(block)
	c.meter.Process(block)
	c.gain.Process(block)

	if c.tap != nil {
		c.tap.Write(block)
	}

	for ch := range bus {
		vecmath.AddBlockInPlace(bus[ch], block[min(ch, len(block)-1)])
	}

	return ended
}

// Dispose releases every node and buffer reference. It is idempotent.
func (c *Chain) Dispose() {
	if c.disposed {
		return
	}

	c.disposed = true

	if c.player != nil {
		c.player.Close()
		c.player = nil
	}

	if c.overlay != nil {
		c.overlay.Close()
		c.overlay = nil
	}

	if c.live != nil {
		_ = c.live.Close()
		c.live = nil
	}

	c.tap = nil
}
