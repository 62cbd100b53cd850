package effectchain

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-dj/dsp/core"
)

// Context provides environmental information that nodes need.
type Context struct {
	SampleRate float64
	Channels   int
}

// NewContext derives a node context from processor options.
func NewContext(opts ...core.ProcessorOption) Context {
	cfg := core.ApplyProcessorOptions(opts...)

	return Context{SampleRate: cfg.SampleRate, Channels: cfg.Channels}
}

func (c Context) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("effectchain: sample rate must be > 0: %f", c.SampleRate)
	}

	if c.Channels <= 0 {
		return fmt.Errorf("effectchain: channels must be > 0: %d", c.Channels)
	}

	return nil
}

// InputProvider opens live-capture devices.
type InputProvider interface {
	Open(ctx context.Context, deviceID string) (LiveInput, error)
}

// InputFunc adapts a render function to LiveInput.
type InputFunc func(dst [][]float64)

// Render adds the next frames of the input into dst.
func (f InputFunc) Render(dst [][]float64) { f(dst) }

// Close is a no-op.
func (f InputFunc) Close() error { return nil }
