package effectchain

import (
	"fmt"

	"github.com/cwbudde/algo-dj/dsp/buffer"
)

// Native is the pure-Go Backend.
type Native struct {
	ctx      Context
	registry *Registry
}

// NewNative returns a backend building nodes from registry. A nil registry
// selects DefaultRegistry.
func NewNative(ctx Context, registry *Registry) (*Native, error) {
	if err := ctx.validate(); err != nil {
		return nil, err
	}

	if registry == nil {
		registry = DefaultRegistry()
	}

	return &Native{ctx: ctx, registry: registry}, nil
}

// Context returns the backend's node context.
func (n *Native) Context() Context { return n.ctx }

// Registry returns the factories used by n.
func (n *Native) Registry() *Registry { return n.registry }

// NewPlayer retains buf and returns a stopped player for it.
func (n *Native) NewPlayer(buf *buffer.PCM) (Player, error) {
	if buf == nil {
		return nil, fmt.Errorf("effectchain: nil buffer")
	}

	owned := buf.Retain()
	if owned == nil {
		return nil, buffer.ErrReleased
	}

	return newFilePlayer(owned, n.ctx.SampleRate), nil
}

// NewEQ builds a flat EQ.
func (n *Native) NewEQ() (EQ, error) { return build[EQ](n, KindEQ) }

// NewFilter builds an open lowpass.
func (n *Native) NewFilter() (Filter, error) { return build[Filter](n, KindFilter) }

// NewReverb builds a dry reverb.
func (n *Native) NewReverb() (Reverb, error) { return build[Reverb](n, KindReverb) }

// NewMeter builds a silent meter.
func (n *Native) NewMeter() (Meter, error) { return build[Meter](n, KindMeter) }

// NewGain builds a unity gain.
func (n *Native) NewGain() (Gain, error) { return build[Gain](n, KindGain) }

func build[T Processor](n *Native, kind string) (T, error) {
	var zero T

	p, err := n.registry.Build(kind, n.ctx)
	if err != nil {
		return zero, err
	}

	node, ok := p.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T", ErrNodeType, kind, p)
	}

	return node, nil
}
