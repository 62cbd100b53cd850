package main

import (
	"context"
	"math"

	"github.com/cwbudde/algo-dj/dsp/effectchain"
)

// toneProvider stands in for a capture device: every device id opens a sine
// oscillator.
type toneProvider struct {
	freq       float64
	sampleRate float64
}

func (p toneProvider) Open(ctx context.Context, _ string) (effectchain.LiveInput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &toneInput{step: 2 * math.Pi * p.freq / p.sampleRate}, nil
}

type toneInput struct {
	phase float64
	step  float64
}

func (t *toneInput) Render(dst [][]float64) {
	frames := len(dst[0])

	for i := range frames {
		v := 0.3 * math.Sin(t.phase)
		for ch := range dst {
			dst[ch][i] += v
		}

		t.phase = math.Mod(t.phase+t.step, 2*math.Pi)
	}
}

func (t *toneInput) Close() error { return nil }
