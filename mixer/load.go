package mixer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-dj/dsp/buffer"
	"github.com/cwbudde/algo-dj/internal/codec"
	"github.com/cwbudde/algo-dj/measure/tempo"
	"github.com/cwbudde/algo-dj/measure/waveform"
)

const reportTimeout = 5 * time.Second

// LoadTrack loads t onto a deck. The audio comes from t.Buffer when set,
// else from reading t.Path. Decoding and analysis run without holding the
// engine; if another load for the deck starts meanwhile, this one is
// discarded and LoadTrack returns nil.
func (e *Engine) LoadTrack(ctx context.Context, id DeckID, t Track) error {
	gen, err := e.beginLoad(id)
	if err != nil {
		return err
	}

	return e.finishLoad(ctx, id, gen, t)
}

// LoadBytes decodes an encoded file held in memory onto a deck.
func (e *Engine) LoadBytes(ctx context.Context, id DeckID, name string, data []byte) error {
	gen, err := e.beginLoad(id)
	if err != nil {
		return err
	}

	buf, _, err := e.cache.Acquire(buffer.ContentKey(data), func() (*buffer.PCM, error) {
		return decode(data)
	})
	if err != nil {
		return err
	}

	t := Track{Name: name, Buffer: buf}
	defer buf.Release()

	return e.finishLoad(ctx, id, gen, t)
}

// LoadFile reads path through the FileReader and loads it onto a deck.
func (e *Engine) LoadFile(ctx context.Context, id DeckID, path string) error {
	return e.LoadTrack(ctx, id, Track{Name: filepath.Base(path), Path: path})
}

// LoadTrackByID fetches a track from the repository and loads it.
func (e *Engine) LoadTrackByID(ctx context.Context, id DeckID, trackID string) error {
	if e.cfg.Tracks == nil {
		return fmt.Errorf("%w: no track repository", ErrInvalidState)
	}

	gen, err := e.beginLoad(id)
	if err != nil {
		return err
	}

	t, err := e.cfg.Tracks.GetTrack(ctx, trackID)
	if err != nil {
		return fmt.Errorf("mixer: get track %q: %w", trackID, err)
	}

	if t.ID == "" {
		t.ID = trackID
	}

	return e.finishLoad(ctx, id, gen, t)
}

// beginLoad claims the next load generation of a deck.
func (e *Engine) beginLoad(id DeckID) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, ErrClosed
	}

	if !id.valid() {
		return 0, fmt.Errorf("%w: unknown deck %d", ErrInvalidState, int(id))
	}

	d := e.decks[id]
	d.gen++

	return d.gen, nil
}

func (e *Engine) finishLoad(ctx context.Context, id DeckID, gen uint64, t Track) error {
	buf, err := e.acquire(ctx, t)
	if err != nil {
		return err
	}

	t.Buffer = nil

	fresh, err := analyze(ctx, &t, buf)
	if err == nil {
		err = ctx.Err()
	}

	if err != nil {
		buf.Release()
		return err
	}

	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()
		buf.Release()

		return ErrClosed
	}

	d := e.decks[id]
	if d.gen != gen {
		e.mu.Unlock()
		buf.Release()
		e.log.Debug("discarding stale load", "deck", id.String(), "track", t.Name)

		return nil
	}

	err = e.commit(d, t, buf)
	e.mu.Unlock()

	if err != nil {
		return err
	}

	e.log.Info("track loaded", "deck", id.String(), "track", t.Name,
		"bpm", t.EffectiveBPM(), "duration", t.Duration)

	if fresh && t.ID != "" {
		bpm, dur := t.DetectedBPM, t.Duration

		u := TrackUpdate{ID: t.ID, Duration: &dur}
		if !t.TempoFallback {
			u.DetectedBPM = &bpm
		}

		e.report(u)
	}

	return nil
}

// acquire returns an owned reference to the track's audio.
func (e *Engine) acquire(ctx context.Context, t Track) (*buffer.PCM, error) {
	if t.Buffer != nil {
		buf := t.Buffer.Retain()
		if buf == nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, buffer.ErrReleased)
		}

		return buf, nil
	}

	if t.Path == "" {
		return nil, fmt.Errorf("%w: track %q has no audio", ErrDecode, t.Name)
	}

	key := "path:" + t.Path
	if t.ID != "" {
		key = "track:" + t.ID
	}

	buf, hit, err := e.cache.Acquire(key, func() (*buffer.PCM, error) {
		data, err := e.cfg.Files.ReadFile(ctx, t.Path)
		if err != nil {
			return nil, fmt.Errorf("mixer: read %s: %w", t.Path, err)
		}

		return decode(data)
	})
	if err != nil {
		return nil, err
	}

	e.log.Debug("acquired track audio", "track", t.Name, "cached", hit)

	return buf, nil
}

func decode(data []byte) (*buffer.PCM, error) {
	buf, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return buf, nil
}

// analyze fills duration, waveform peaks and, when unknown, the detected
// tempo. A signal without a measurable tempo gets tempo.DefaultBPM marked
// as a fallback. fresh reports whether the tempo was detected now.
func analyze(ctx context.Context, t *Track, buf *buffer.PCM) (fresh bool, err error) {
	samples := buf.Channel(0)
	if samples == nil {
		return false, fmt.Errorf("%w: %w", ErrDecode, buffer.ErrReleased)
	}

	t.Duration = buf.Duration()

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		t.Peaks = waveform.Peaks(samples)
		return nil
	})

	if t.DetectedBPM <= 0 {
		fresh = true

		g.Go(func() error {
			est, err := tempo.Analyze(samples, buf.SampleRate())
			if err != nil {
				t.DetectedBPM, t.TempoFallback = tempo.DefaultBPM, true
				return nil
			}

			t.DetectedBPM, t.TempoFallback = est.BPM, false

			return nil
		})
	}

	return fresh, g.Wait()
}

// commit installs a decoded track on d, taking ownership of buf. The old
// track stays in place when the new chain cannot be built.
// Caller holds e.mu.
func (e *Engine) commit(d *deck, t Track, buf *buffer.PCM) error {
	chain, err := e.graph.Create(int(d.id), buf)
	if err != nil {
		buf.Release()
		return fmt.Errorf("mixer: %w", err)
	}

	e.teardown(d)

	d.chain = chain
	d.buf = buf
	d.track = &t
	d.status = StatusStopped
	e.applySettings(d)

	e.emit(Event{Kind: EventTrackLoaded, Deck: d.id})

	if bpm := t.EffectiveBPM(); bpm > 0 {
		e.clock.SetBPM(bpm)
	}

	if e.cfg.TempoSync {
		e.syncTempo(d)
	}

	return nil
}

// syncTempo matches a playing other deck to the tempo of the freshly
// loaded deck. The adjustment is one-shot and is never undone.
func (e *Engine) syncTempo(loaded *deck) {
	other := e.decks[loaded.id.other()]
	if other.status != StatusPlaying || other.track == nil {
		return
	}

	bpmLoaded, bpmOther := loaded.track.EffectiveBPM(), other.track.EffectiveBPM()
	if bpmLoaded <= 0 || bpmOther <= 0 {
		return
	}

	rate := bpmLoaded / bpmOther
	if !e.setRate(other, rate) {
		return
	}

	e.log.Debug("tempo synced", "deck", other.id.String(), "rate", rate)
	e.emit(Event{Kind: EventTempoSynced, Deck: other.id, Rate: rate})
}

// report sends a track update to the repository in the background.
func (e *Engine) report(u TrackUpdate) {
	repo := e.cfg.Tracks
	if repo == nil {
		return
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	e.reports.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.reports.Done()

		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()

		if err := repo.UpdateTrack(ctx, u); err != nil && !errors.Is(err, context.Canceled) {
			e.log.Warn("track update failed", "track", u.ID, "error", err)
		}
	}()
}
