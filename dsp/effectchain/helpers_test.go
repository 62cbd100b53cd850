package effectchain

import (
	"testing"

	"github.com/cwbudde/algo-dj/dsp/buffer"
	"github.com/cwbudde/algo-dj/dsp/core"
)

const testRate = 48000.0

func newTestBackend(t *testing.T) *Native {
	t.Helper()

	b, err := NewNative(NewContext(core.WithSampleRate(testRate)), nil)
	if err != nil {
		t.Fatalf("NewNative: %v", err)
	}

	return b
}

func newPCM(t *testing.T, sampleRate float64, channels ...[]float64) *buffer.PCM {
	t.Helper()

	pcm, err := buffer.NewPCM(channels, sampleRate)
	if err != nil {
		t.Fatalf("NewPCM: %v", err)
	}

	return pcm
}

func block(frames int) [][]float64 {
	return core.NewBlock(2, frames)
}

// closeCounter is a LiveInput writing a constant.
type closeCounter struct {
	value  float64
	closed int
}

func (c *closeCounter) Render(dst [][]float64) {
	for ch := range dst {
		for i := range dst[ch] {
			dst[ch][i] += c.value
		}
	}
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

// recordingTap keeps copies of every block.
type recordingTap struct {
	frames int
	last   float64
}

func (r *recordingTap) Write(block [][]float64) {
	r.frames += core.Frames(block)
	if n := core.Frames(block); n > 0 {
		r.last = block[0][n-1]
	}
}
