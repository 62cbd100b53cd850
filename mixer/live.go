package mixer

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-dj/dsp/buffer"
)

// ToggleLiveInput switches a deck between its track and a live capture
// device. Enabling on an empty deck installs a zero-length "Live Input"
// placeholder track; disabling on a placeholder empties the deck. A loaded
// deck keeps its track and play head while live and returns to Stopped.
func (e *Engine) ToggleLiveInput(ctx context.Context, id DeckID, enable bool, deviceID string) error {
	if !enable {
		return e.disableLive(id)
	}

	if e.cfg.Inputs == nil {
		return fmt.Errorf("%w: no input provider", ErrDevice)
	}

	gen, err := e.beginLoad(id)
	if err != nil {
		return err
	}

	live, err := e.cfg.Inputs.Open(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("%w: open %q: %w", ErrDevice, deviceID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		_ = live.Close()
		return ErrClosed
	}

	d := e.decks[id]
	if d.gen != gen {
		_ = live.Close()
		e.log.Debug("discarding stale live input", "deck", id.String(), "device", deviceID)

		return nil
	}

	if d.status == StatusEmpty {
		if err := e.installPlaceholder(d); err != nil {
			_ = live.Close()
			return err
		}
	}

	if d.status == StatusPlaying {
		e.cancelRoll(d, false)
		d.head = d.player().Position()
	}

	if err := d.chain.SwitchInput(live); err != nil {
		e.log.Warn("closing previous live input", "deck", id.String(), "error", err)
	}

	d.status = StatusLive
	d.device = deviceID

	e.log.Info("live input enabled", "deck", id.String(), "device", deviceID)

	return nil
}

func (e *Engine) installPlaceholder(d *deck) error {
	buf := buffer.Silence(e.cfg.SampleRate)

	chain, err := e.graph.Create(int(d.id), buf)
	if err != nil {
		buf.Release()
		return fmt.Errorf("mixer: %w", err)
	}

	d.chain = chain
	d.buf = buf
	d.track = &Track{Name: LiveInputName, LiveInput: true}
	e.applySettings(d)

	return nil
}

func (e *Engine) disableLive(id DeckID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.deck(id, "live-input-off")
	if d == nil {
		return nil
	}

	if d.status != StatusLive {
		e.ignore(d, "live-input-off")
		return nil
	}

	// A pending enable must not reattach the device afterwards.
	d.gen++

	if d.track != nil && d.track.LiveInput {
		e.teardown(d)
		e.log.Info("live input disabled", "deck", id.String())

		return nil
	}

	err := d.chain.DisableLive()
	d.status = StatusStopped
	d.device = ""

	e.log.Info("live input disabled", "deck", id.String())

	if err != nil {
		return fmt.Errorf("%w: close: %w", ErrDevice, err)
	}

	return nil
}
