package mixer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cwbudde/algo-dj/dsp/buffer"
	"github.com/cwbudde/algo-dj/dsp/core"
	"github.com/cwbudde/algo-dj/dsp/effectchain"
	"github.com/cwbudde/algo-dj/internal/codec"
)

const testRate = 8000.0

var testNow = time.Date(2026, 3, 14, 21, 30, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return testNow }

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	base := []Option{
		WithSampleRate(testRate),
		WithBlockSize(64),
		WithClock(fixedClock{}),
	}

	e, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	t.Cleanup(func() { _ = e.Close() })

	return e
}

func newPCM(t *testing.T, mono []float64) *buffer.PCM {
	t.Helper()

	pcm, err := buffer.NewPCM([][]float64{mono, append([]float64(nil), mono...)}, testRate)
	if err != nil {
		t.Fatalf("NewPCM: %v", err)
	}

	return pcm
}

// loadMono loads mono audio onto a deck and drops the test's reference.
func loadMono(t *testing.T, e *Engine, id DeckID, name string, bpm float64, mono []float64) {
	t.Helper()

	pcm := newPCM(t, mono)
	defer pcm.Release()

	err := e.LoadTrack(context.Background(), id, Track{ID: name, Name: name, BPM: bpm, Buffer: pcm})
	if err != nil {
		t.Fatalf("LoadTrack(%s): %v", name, err)
	}
}

func render(e *Engine, frames int) [][]float64 {
	out := core.NewBlock(2, frames)
	e.Render(out)

	return out
}

func wavBytes(t *testing.T, mono []float64) []byte {
	t.Helper()

	pcm := newPCM(t, mono)
	defer pcm.Release()

	path := filepath.Join(t.TempDir(), "clip.wav")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := codec.EncodeWAV(f, pcm); err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	return data
}

// drain returns every event currently queued.
func drain(e *Engine) []Event {
	var out []Event

	for {
		select {
		case ev, ok := <-e.Events():
			if !ok {
				return out
			}

			out = append(out, ev)
		default:
			return out
		}
	}
}

func hasEvent(events []Event, kind EventKind, id DeckID) (Event, bool) {
	for _, ev := range events {
		if ev.Kind == kind && ev.Deck == id {
			return ev, true
		}
	}

	return Event{}, false
}

type fakeRepo struct {
	mu      sync.Mutex
	tracks  map[string]Track
	updates []TrackUpdate
}

func (r *fakeRepo) GetTrack(_ context.Context, id string) (Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tracks[id]
	if !ok {
		return Track{}, errors.New("not found")
	}

	return t, nil
}

func (r *fakeRepo) UpdateTrack(_ context.Context, u TrackUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.updates = append(r.updates, u)

	return nil
}

func (r *fakeRepo) Updates() []TrackUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]TrackUpdate(nil), r.updates...)
}

// fakeFiles serves files from memory. Reads of a gated path block until
// the gate is closed.
type fakeFiles struct {
	files   map[string][]byte
	gate    map[string]chan struct{}
	entered chan string
}

func (f *fakeFiles) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if f.entered != nil {
		f.entered <- path
	}

	if g := f.gate[path]; g != nil {
		select {
		case <-g:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	data, ok := f.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}

	return data, nil
}

// constInput is a live input adding a constant.
type constInput struct {
	value  float64
	closed int
}

func (c *constInput) Render(dst [][]float64) {
	for ch := range dst {
		for i := range dst[ch] {
			dst[ch][i] += c.value
		}
	}
}

func (c *constInput) Close() error {
	c.closed++
	return nil
}

type fakeInputs struct {
	opened []*constInput
	err    error
}

func (f *fakeInputs) Open(_ context.Context, _ string) (effectchain.LiveInput, error) {
	if f.err != nil {
		return nil, f.err
	}

	in := &constInput{value: 0.25}
	f.opened = append(f.opened, in)

	return in, nil
}
