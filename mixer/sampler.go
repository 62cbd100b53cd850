package mixer

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-dj/dsp/buffer"
	"github.com/cwbudde/algo-dj/dsp/core"
	"github.com/cwbudde/algo-dj/dsp/effectchain"
	"github.com/cwbudde/algo-dj/internal/codec"
)

const (
	// SlotCount is the number of sample pads per deck.
	SlotCount = 8

	// DefaultSampleVolume is the volume of a newly added sample.
	DefaultSampleVolume = 0.8

	// MaxSamplePitch bounds the sample pitch in semitones either way.
	MaxSamplePitch = 12.0
)

// SampleMode selects how a trigger behaves.
type SampleMode int

const (
	// ModeOneShot starts a new overlapping voice on every trigger.
	ModeOneShot SampleMode = iota
	// ModeLoop keeps a single looping voice and restarts it on trigger.
	ModeLoop
)

func (m SampleMode) String() string {
	switch m {
	case ModeOneShot:
		return "one-shot"
	case ModeLoop:
		return "loop"
	default:
		return "unknown"
	}
}

// VoiceID identifies one playing instance of a sample.
type VoiceID string

// Sample describes one occupied pad.
type Sample struct {
	ID       string
	Name     string
	Slot     int
	Mode     SampleMode
	Volume   float64
	Pitch    float64
	Duration float64
	Playing  bool
	Voices   int
}

type slot struct {
	id     string
	name   string
	buf    *buffer.PCM
	mode   SampleMode
	volume float64
	pitch  float64
	voices []*voice
}

type voice struct {
	id     VoiceID
	player effectchain.Player
}

func (s *slot) sample(index int) Sample {
	return Sample{
		ID:       s.id,
		Name:     s.name,
		Slot:     index,
		Mode:     s.mode,
		Volume:   s.volume,
		Pitch:    s.pitch,
		Duration: s.buf.Duration(),
		Playing:  len(s.voices) > 0,
		Voices:   len(s.voices),
	}
}

// rate is the playback rate for the slot's pitch. The player adds the
// buffer to engine sample-rate ratio.
func (s *slot) rate() float64 { return core.SemitoneRatio(s.pitch) }

// sampler holds the pads of both decks and their voices. Voices sum into
// the master bus, bypassing the deck chains. All methods expect the engine
// lock to be held.
type sampler struct {
	backend effectchain.Backend
	slots   [NumDecks][SlotCount]*slot
}

func newSampler(backend effectchain.Backend) *sampler {
	return &sampler{backend: backend}
}

func (s *sampler) slot(id DeckID, index int) *slot {
	if !id.valid() || index < 0 || index >= SlotCount {
		return nil
	}

	return s.slots[id][index]
}

// add places buf in the first free slot. It owns buf and releases it on
// failure.
func (s *sampler) add(id DeckID, buf *buffer.PCM, name string) (Sample, error) {
	for i, sl := range s.slots[id] {
		if sl != nil {
			continue
		}

		sl = &slot{
			id:     uuid.NewString(),
			name:   name,
			buf:    buf,
			mode:   ModeOneShot,
			volume: DefaultSampleVolume,
		}
		s.slots[id][i] = sl

		return sl.sample(i), nil
	}

	buf.Release()

	return Sample{}, fmt.Errorf("%w: deck %s", ErrSlotsFull, id)
}

func (s *sampler) trigger(sl *slot) (VoiceID, error) {
	if sl.mode == ModeLoop {
		s.stopAll(sl)
	}

	p, err := s.backend.NewPlayer(sl.buf)
	if err != nil {
		return "", fmt.Errorf("mixer: trigger %q: %w", sl.name, err)
	}

	p.SetRate(sl.rate())
	p.SetVolume(sl.volume)

	if sl.mode == ModeLoop {
		p.SetLoop(0, sl.buf.Duration())
	}

	p.Start(0)

	v := &voice{id: VoiceID(uuid.NewString()), player: p}
	sl.voices = append(sl.voices, v)

	return v.id, nil
}

func (s *sampler) stopAll(sl *slot) {
	for _, v := range sl.voices {
		v.player.Close()
	}

	sl.voices = nil
}

func (s *sampler) stopVoice(id VoiceID) bool {
	for _, pads := range s.slots {
		for _, sl := range pads {
			if sl == nil {
				continue
			}

			for i, v := range sl.voices {
				if v.id == id {
					v.player.Close()
					sl.voices = append(sl.voices[:i], sl.voices[i+1:]...)

					return true
				}
			}
		}
	}

	return false
}

func (s *sampler) clear(id DeckID, index int) {
	sl := s.slots[id][index]
	if sl == nil {
		return
	}

	s.stopAll(sl)
	sl.buf.Release()
	s.slots[id][index] = nil
}

func (s *sampler) closeAll() {
	for id := range s.slots {
		for i := range s.slots[id] {
			s.clear(DeckID(id), i)
		}
	}
}

// render adds every voice into bus and drops voices that finished.
func (s *sampler) render(bus [][]float64) {
	for _, pads := range s.slots {
		for _, sl := range pads {
			if sl == nil || len(sl.voices) == 0 {
				continue
			}

			live := sl.voices[:0]
			for _, v := range sl.voices {
				ended := v.player.Render(bus)
				if ended || !v.player.Playing() {
					v.player.Close()
					continue
				}

				live = append(live, v)
			}

			clear(sl.voices[len(live):])
			sl.voices = live
		}
	}
}

func (s *sampler) samples(id DeckID) [SlotCount]*Sample {
	var out [SlotCount]*Sample

	for i, sl := range s.slots[id] {
		if sl != nil {
			smp := sl.sample(i)
			out[i] = &smp
		}
	}

	return out
}

// AddSample places buf in the deck's first free pad as a one-shot at
// volume 0.8. The engine takes over the caller's reference to buf, and
// releases it when the pads are full.
func (e *Engine) AddSample(id DeckID, buf *buffer.PCM, name string) (Sample, error) {
	if buf == nil {
		return Sample{}, fmt.Errorf("%w: nil sample buffer", ErrInvalidState)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		buf.Release()
		return Sample{}, ErrClosed
	}

	if !id.valid() {
		buf.Release()
		return Sample{}, fmt.Errorf("%w: unknown deck %d", ErrInvalidState, int(id))
	}

	smp, err := e.sampler.add(id, buf, name)
	if err != nil {
		return Sample{}, err
	}

	e.log.Debug("sample added", "deck", id.String(), "slot", smp.Slot, "name", name)

	return smp, nil
}

// AddSampleBytes decodes data and adds it as a sample.
func (e *Engine) AddSampleBytes(ctx context.Context, id DeckID, name string, data []byte) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}

	buf, _, err := e.cache.Acquire(buffer.ContentKey(data), func() (*buffer.PCM, error) {
		return decode(data)
	})
	if err != nil {
		return Sample{}, err
	}

	return e.AddSample(id, buf, name)
}

// LoadTrackAsSample adds the deck's current track as a sample sharing the
// same audio.
func (e *Engine) LoadTrackAsSample(id DeckID) (Sample, error) {
	e.mu.Lock()

	d := e.deck(id, "load-track-as-sample")
	if d == nil || !d.status.loaded() || d.buf == nil {
		e.mu.Unlock()
		return Sample{}, fmt.Errorf("%w: deck %s has no track", ErrInvalidState, id)
	}

	buf := d.buf.Retain()
	name := d.track.Name
	e.mu.Unlock()

	if buf == nil {
		return Sample{}, fmt.Errorf("%w: %w", ErrInvalidState, buffer.ErrReleased)
	}

	return e.AddSample(id, buf, name)
}

// TriggerSample starts a pad. A loop pad restarts its single voice; a
// one-shot pad starts another voice that overlaps the running ones.
func (e *Engine) TriggerSample(id DeckID, index int) (VoiceID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return "", ErrClosed
	}

	sl := e.sampler.slot(id, index)
	if sl == nil {
		return "", fmt.Errorf("%w: no sample in deck %s slot %d", ErrInvalidState, id, index)
	}

	return e.sampler.trigger(sl)
}

// StopSample stops every voice of a pad.
func (e *Engine) StopSample(id DeckID, index int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if sl := e.padFor(id, index, "stop-sample"); sl != nil {
		e.sampler.stopAll(sl)
	}
}

// StopVoice stops one voice. Unknown or finished voices are ignored.
func (e *Engine) StopVoice(v VoiceID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	if !e.sampler.stopVoice(v) {
		e.log.Debug("ignoring stop for unknown voice", "voice", string(v))
	}
}

// SetSampleVolume sets a pad's volume in [0,1], applied to its running
// voices and to later triggers.
func (e *Engine) SetSampleVolume(id DeckID, index int, volume float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sl := e.padFor(id, index, "set-sample-volume")
	if sl == nil || math.IsNaN(volume) {
		return
	}

	sl.volume = core.Clamp(volume, 0, 1)
	for _, v := range sl.voices {
		v.player.SetVolume(sl.volume)
	}
}

// SetSamplePitch sets a pad's pitch in semitones, clamped to +/-12.
// Playback rate follows 2^(pitch/12).
func (e *Engine) SetSamplePitch(id DeckID, index int, semitones float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sl := e.padFor(id, index, "set-sample-pitch")
	if sl == nil || math.IsNaN(semitones) {
		return
	}

	sl.pitch = core.Clamp(semitones, -MaxSamplePitch, MaxSamplePitch)
	for _, v := range sl.voices {
		v.player.SetRate(sl.rate())
	}
}

// SetSampleMode changes how later triggers behave. Switching to one-shot
// lets a running loop voice finish its current pass.
func (e *Engine) SetSampleMode(id DeckID, index int, mode SampleMode) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sl := e.padFor(id, index, "set-sample-mode")
	if sl == nil || (mode != ModeOneShot && mode != ModeLoop) {
		return
	}

	if sl.mode == ModeLoop && mode == ModeOneShot {
		for _, v := range sl.voices {
			v.player.SetLoop(0, 0)
		}
	}

	sl.mode = mode
}

// ClearSample stops a pad's voices and frees the pad.
func (e *Engine) ClearSample(id DeckID, index int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if sl := e.padFor(id, index, "clear-sample"); sl != nil {
		e.sampler.clear(id, index)
	}
}

// Samples returns the pads of a deck; empty pads are nil.
func (e *Engine) Samples(id DeckID) [SlotCount]*Sample {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !id.valid() {
		return [SlotCount]*Sample{}
	}

	return e.sampler.samples(id)
}

// ExportSampleWAV writes a pad's audio to w as 16-bit PCM WAV.
func (e *Engine) ExportSampleWAV(id DeckID, index int, w io.WriteSeeker) error {
	e.mu.Lock()

	sl := e.sampler.slot(id, index)
	if e.closed || sl == nil {
		e.mu.Unlock()
		return fmt.Errorf("%w: no sample in deck %s slot %d", ErrInvalidState, id, index)
	}

	buf := sl.buf.Retain()
	e.mu.Unlock()

	if buf == nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, buffer.ErrReleased)
	}
	defer buf.Release()

	return codec.EncodeWAV(w, buf)
}

// padFor returns an occupied pad, logging and returning nil otherwise.
// Caller holds e.mu.
func (e *Engine) padFor(id DeckID, index int, intent string) *slot {
	if e.closed {
		return nil
	}

	sl := e.sampler.slot(id, index)
	if sl == nil {
		e.log.Debug("ignoring intent for empty pad", "intent", intent, "deck", id.String(), "slot", index)
	}

	return sl
}
