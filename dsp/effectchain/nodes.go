package effectchain

import "github.com/cwbudde/algo-dj/dsp/buffer"

// Processor transforms a planar block in place.
type Processor interface {
	Process(block [][]float64)
}

// Player plays one buffer. Render adds its output into dst.
type Player interface {
	// Start plays from offset seconds into the buffer.
	Start(offset float64)
	Stop()
	Playing() bool

	// Position returns the play head in seconds.
	Position() float64

	// SetRate sets the playback rate relative to the buffer's native speed.
	// The sample-rate ratio to the engine is applied on top.
	SetRate(rate float64)
	Rate() float64

	// SetLoop loops [start, end) seconds. end <= start clears the loop.
	SetLoop(start, end float64)
	Looping() bool

	SetVolume(v float64)
	Volume() float64

	// Render adds volume-scaled output to dst and reports whether the
	// player reached the end of a non-looping buffer during this call.
	Render(dst [][]float64) (ended bool)

	Buffer() *buffer.PCM

	// Close stops the player and releases its buffer reference.
	Close()
}

// LiveInput is an open capture stream.
type LiveInput interface {
	// Render adds the next captured frames into dst.
	Render(dst [][]float64)
	Close() error
}

// Band selects one EQ band.
type Band int

const (
	BandLow Band = iota
	BandMid
	BandHigh
)

func (b Band) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandMid:
		return "mid"
	case BandHigh:
		return "high"
	default:
		return "unknown"
	}
}

// EQ is a three-band equalizer.
type EQ interface {
	Processor
	SetGain(band Band, gainDB float64)
	Gain(band Band) float64
}

// Filter is a resonant lowpass.
type Filter interface {
	Processor
	SetLowpass(cutoffHz, q float64)
	Cutoff() float64
	Q() float64
}

// Reverb is a send-style reverb with a dry/wet balance.
type Reverb interface {
	Processor
	SetWet(wet float64)
	Wet() float64
}

// Meter observes a block without changing it.
type Meter interface {
	Processor
	DB() float64
	Reset()
}

// Gain scales a block.
type Gain interface {
	Processor
	SetGain(linear float64)
	Gain() float64
}

// Tap receives a copy-free view of a chain's output after the deck gain.
// Implementations must copy what they keep.
type Tap interface {
	Write(block [][]float64)
}

// Backend creates nodes.
type Backend interface {
	Context() Context
	NewPlayer(buf *buffer.PCM) (Player, error)
	NewEQ() (EQ, error)
	NewFilter() (Filter, error)
	NewReverb() (Reverb, error)
	NewMeter() (Meter, error)
	NewGain() (Gain, error)
}
