package effectchain

import (
	"math"

	"github.com/cwbudde/algo-dj/dsp/buffer"
)

// filePlayer resamples a PCM buffer by linear interpolation.
type filePlayer struct {
	buf        *buffer.PCM
	engineRate float64

	rate    float64
	volume  float64
	pos     float64 // frames into buf
	playing bool

	looping            bool
	loopStart, loopEnd float64 // frames

	channels [][]float64
}

func newFilePlayer(buf *buffer.PCM, engineRate float64) *filePlayer {
	p := &filePlayer{
		buf:        buf,
		engineRate: engineRate,
		rate:       1,
		volume:     1,
	}

	n := buf.Channels()
	p.channels = make([][]float64, n)
	for ch := range p.channels {
		p.channels[ch] = buf.Channel(ch)
	}

	return p
}

// snapFrame removes rounding noise from seconds-to-frames conversions.
func snapFrame(x float64) float64 {
	const eps = 1e-6

	if r := math.Round(x); math.Abs(x-r) < eps {
		return r
	}

	return x
}

func (p *filePlayer) frames() float64 { return float64(p.buf.Frames()) }

func (p *filePlayer) Start(offset float64) {
	if p.buf == nil {
		return
	}

	if math.IsNaN(offset) || offset < 0 {
		offset = 0
	}

	p.pos = math.Min(snapFrame(offset*p.buf.SampleRate()), p.frames())
	p.playing = true
}

func (p *filePlayer) Stop() { p.playing = false }

func (p *filePlayer) Playing() bool { return p.playing }

func (p *filePlayer) Position() float64 {
	if p.buf == nil {
		return 0
	}

	return p.pos / p.buf.SampleRate()
}

func (p *filePlayer) SetRate(rate float64) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return
	}

	p.rate = rate
}

func (p *filePlayer) Rate() float64 { return p.rate }

func (p *filePlayer) SetLoop(start, end float64) {
	if p.buf == nil {
		return
	}

	sr := p.buf.SampleRate()
	s := math.Max(0, snapFrame(start*sr))
	e := math.Min(snapFrame(end*sr), p.frames())

	if !(e > s) {
		p.looping = false
		return
	}

	p.looping = true
	p.loopStart, p.loopEnd = s, e
}

func (p *filePlayer) Looping() bool { return p.looping }

func (p *filePlayer) SetVolume(v float64) {
	if math.IsNaN(v) || v < 0 {
		v = 0
	}

	p.volume = v
}

func (p *filePlayer) Volume() float64 { return p.volume }

func (p *filePlayer) Buffer() *buffer.PCM { return p.buf }

func (p *filePlayer) Render(dst [][]float64) bool {
	if !p.playing || p.buf == nil || len(p.channels) == 0 {
		return false
	}

	n := p.frames()
	if n == 0 {
		p.playing = false
		return true
	}

	step := p.rate * p.buf.SampleRate() / p.engineRate
	last := len(p.channels) - 1
	frames := 0
	if len(dst) > 0 {
		frames = len(dst[0])
	}

	for i := range frames {
		if p.looping && p.pos >= p.loopEnd {
			span := p.loopEnd - p.loopStart
			p.pos = p.loopStart + math.Mod(p.pos-p.loopStart, span)
		}

		if p.pos >= n {
			p.playing = false
			return true
		}

		idx := int(p.pos)
		frac := p.pos - float64(idx)

		for ch := range dst {
			src := p.channels[min(ch, last)]

			s0 := src[idx]
			s1 := s0
			if idx+1 < len(src) {
				s1 = src[idx+1]
			}

			dst[ch][i] += p.volume * (s0 + frac*(s1-s0))
		}

		p.pos += step
	}

	if !p.looping && p.pos >= n {
		p.playing = false
		return true
	}

	return false
}

func (p *filePlayer) Close() {
	p.playing = false
	p.channels = nil

	if p.buf != nil {
		p.buf.Release()
		p.buf = nil
	}
}
