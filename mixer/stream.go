package mixer

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/cwbudde/algo-dj/dsp/core"
)

const float32Size = 4

// Stream reads the master mix as interleaved little-endian float32 frames,
// the layout audio devices pull. It renders BlockSize frames at a time.
type Stream struct {
	engine  *Engine
	block   [][]float64
	buf     []byte
	pending []byte
}

// Stream returns a reader over the engine output. Reads after Close return
// io.EOF.
func (e *Engine) Stream() *Stream {
	channels, frames := e.Channels(), e.BlockSize()

	return &Stream{
		engine: e,
		block:  core.NewBlock(channels, frames),
		buf:    make([]byte, channels*frames*float32Size),
	}
}

// FrameSize returns the byte size of one interleaved frame.
func (s *Stream) FrameSize() int { return len(s.block) * float32Size }

func (s *Stream) Read(p []byte) (int, error) {
	n := 0

	for n < len(p) {
		if len(s.pending) == 0 {
			if s.engine.isClosed() {
				if n > 0 {
					return n, nil
				}

				return 0, io.EOF
			}

			s.fill()
		}

		c := copy(p[n:], s.pending)
		s.pending = s.pending[c:]
		n += c
	}

	return n, nil
}

func (s *Stream) fill() {
	s.engine.Render(s.block)

	channels := len(s.block)
	for i := range core.Frames(s.block) {
		for ch := range channels {
			off := (i*channels + ch) * float32Size
			binary.LittleEndian.PutUint32(s.buf[off:], math.Float32bits(float32(s.block[ch][i])))
		}
	}

	s.pending = s.buf
}
