package buffer

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrReleased is returned when a buffer is used after its last owner released it.
	ErrReleased = errors.New("buffer: released")

	// ErrInvalidPCM is returned for malformed channel data or sample rates.
	ErrInvalidPCM = errors.New("buffer: invalid pcm data")
)

// PCM is an immutable, reference-counted block of decoded planar audio.
type PCM struct {
	sampleRate float64
	frames     int

	mu        sync.Mutex
	data      [][]float64
	refs      int
	onRelease []func()
}

// NewPCM wraps planar channel data without copying. The returned buffer has
// one owner. Callers must not mutate data afterwards.
func NewPCM(data [][]float64, sampleRate float64) (*PCM, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be > 0: %f", ErrInvalidPCM, sampleRate)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidPCM)
	}

	frames := len(data[0])
	for ch := range data {
		if len(data[ch]) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d frames, want %d", ErrInvalidPCM, ch, len(data[ch]), frames)
		}
	}

	return &PCM{
		sampleRate: sampleRate,
		frames:     frames,
		data:       data,
		refs:       1,
	}, nil
}

// Silence returns a zero-duration stereo buffer. It stands in for a track
// when a deck is driven by live input only.
func Silence(sampleRate float64) *PCM {
	if sampleRate <= 0 {
		sampleRate = 44100
	}

	return &PCM{
		sampleRate: sampleRate,
		data:       [][]float64{{}, {}},
		refs:       1,
	}
}

// SampleRate returns the native sample rate in Hz.
func (p *PCM) SampleRate() float64 { return p.sampleRate }

// Frames returns the number of frames per channel.
func (p *PCM) Frames() int { return p.frames }

// Duration returns the length in seconds.
func (p *PCM) Duration() float64 {
	return float64(p.frames) / p.sampleRate
}

// Channels returns the channel count, 0 after release.
func (p *PCM) Channels() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.data)
}

// Channel returns the read-only samples of channel ch. Mono buffers serve
// channel 0 for any ch. Returns nil after release.
func (p *PCM) Channel(ch int) []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.data) == 0 {
		return nil
	}

	if ch >= len(p.data) {
		ch = len(p.data) - 1
	}

	return p.data[ch]
}

// Retain registers another owner and returns p, or nil when the buffer was
// already released.
func (p *PCM) Retain() *PCM {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.refs <= 0 {
		return nil
	}

	p.refs++

	return p
}

// Release drops one owner. When the count reaches zero the sample data is
// dropped and release hooks run. Extra calls are no-ops.
func (p *PCM) Release() {
	p.mu.Lock()
	if p.refs <= 0 {
		p.mu.Unlock()
		return
	}

	p.refs--
	if p.refs > 0 {
		p.mu.Unlock()
		return
	}

	p.data = nil
	hooks := p.onRelease
	p.onRelease = nil
	p.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// Refs returns the current owner count.
func (p *PCM) Refs() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.refs
}

// Released reports whether the last owner has released the buffer.
func (p *PCM) Released() bool {
	return p.Refs() <= 0
}

// OnRelease registers fn to run once the last owner releases the buffer.
// It runs immediately if that already happened.
func (p *PCM) OnRelease(fn func()) {
	if fn == nil {
		return
	}

	p.mu.Lock()
	if p.refs > 0 {
		p.onRelease = append(p.onRelease, fn)
		p.mu.Unlock()

		return
	}
	p.mu.Unlock()

	fn()
}

// Slice copies frames [start, end) into a new single-owner buffer.
func (p *PCM) Slice(start, end int) (*PCM, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.refs <= 0 {
		return nil, ErrReleased
	}

	start = max(start, 0)
	end = min(end, p.frames)
	if end < start {
		end = start
	}

	out := make([][]float64, len(p.data))
	for ch := range p.data {
		out[ch] = append([]float64(nil), p.data[ch][start:end]...)
	}

	return NewPCM(out, p.sampleRate)
}
