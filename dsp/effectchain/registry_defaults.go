package effectchain

import (
	"github.com/cwbudde/algo-dj/dsp/effects/reverb"
	"github.com/cwbudde/algo-dj/dsp/filter/biquad"
	"github.com/cwbudde/algo-dj/measure/level"
)

// DefaultRegistry returns a Registry populated with the native nodes.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(KindEQ, func(ctx Context) (Processor, error) {
		return newEQNode(ctx), nil
	})
	r.MustRegister(KindFilter, func(ctx Context) (Processor, error) {
		return newFilterNode(ctx), nil
	})
	r.MustRegister(KindReverb, func(ctx Context) (Processor, error) {
		fx, err := reverb.New(ctx.SampleRate)
		if err != nil {
			return nil, err
		}

		return &reverbNode{fx: fx}, nil
	})
	r.MustRegister(KindMeter, func(ctx Context) (Processor, error) {
		return &meterNode{m: level.NewMeter(level.WithChannels(ctx.Channels))}, nil
	})
	r.MustRegister(KindGain, func(_ Context) (Processor, error) {
		return &gainNode{gain: 1}, nil
	})

	return r
}

func newBank(ctx Context) *biquad.Bank {
	return biquad.NewBank(ctx.Channels, biquad.Identity())
}
