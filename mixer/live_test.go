package mixer

import (
	"context"
	"errors"
	"testing"

	"github.com/cwbudde/algo-dj/internal/testutil"
)

func TestLiveInputOnEmptyDeck(t *testing.T) {
	inputs := &fakeInputs{}
	e := newTestEngine(t, WithInputProvider(inputs))
	e.SetCrossfader(0)

	if err := e.ToggleLiveInput(context.Background(), DeckA, true, "mic"); err != nil {
		t.Fatalf("enable: %v", err)
	}

	s := e.Snapshot().Decks[DeckA]
	if s.Status != StatusLive || !s.IsLiveInput || s.Device != "mic" {
		t.Fatalf("state = %v live=%v device=%q", s.Status, s.IsLiveInput, s.Device)
	}

	if s.Track == nil || s.Track.Name != LiveInputName || !s.Track.LiveInput || s.Duration != 0 {
		t.Fatalf("placeholder = %+v", s.Track)
	}

	out := render(e, 64)
	testutil.RequireNearlyEqual(t, "live", out[0][10], 0.25, 1e-12)

	if err := e.ToggleLiveInput(context.Background(), DeckA, false, ""); err != nil {
		t.Fatalf("disable: %v", err)
	}

	s = e.Snapshot().Decks[DeckA]
	if s.Status != StatusEmpty || s.Track != nil {
		t.Fatalf("after disable: %v %+v", s.Status, s.Track)
	}

	if inputs.opened[0].closed != 1 || e.graph.Len() != 0 {
		t.Fatalf("closed=%d chains=%d", inputs.opened[0].closed, e.graph.Len())
	}
}

func TestLiveInputOnLoadedDeck(t *testing.T) {
	inputs := &fakeInputs{}
	e := newTestEngine(t, WithInputProvider(inputs))
	loadMono(t, e, DeckA, "a", 120, testutil.DC(0.5, 16000))
	e.Play(DeckA)
	render(e, 800)

	if err := e.ToggleLiveInput(context.Background(), DeckA, true, "line-in"); err != nil {
		t.Fatalf("enable: %v", err)
	}

	if e.decks[DeckA].player().Playing() {
		t.Fatal("file player still running under live input")
	}

	if err := e.ToggleLiveInput(context.Background(), DeckA, false, ""); err != nil {
		t.Fatalf("disable: %v", err)
	}

	s := e.Snapshot().Decks[DeckA]
	if s.Status != StatusStopped || s.Track.Name != "a" {
		t.Fatalf("after disable: %v %q", s.Status, s.Track.Name)
	}

	testutil.RequireNearlyEqual(t, "kept head", s.Position, 0.1, 1e-9)
}

func TestLiveInputSwitchDevice(t *testing.T) {
	inputs := &fakeInputs{}
	e := newTestEngine(t, WithInputProvider(inputs))

	e.ToggleLiveInput(context.Background(), DeckB, true, "one")
	e.ToggleLiveInput(context.Background(), DeckB, true, "two")

	if len(inputs.opened) != 2 || inputs.opened[0].closed != 1 || inputs.opened[1].closed != 0 {
		t.Fatal("previous device not closed on switch")
	}

	if got := e.Snapshot().Decks[DeckB].Device; got != "two" {
		t.Fatalf("device = %q", got)
	}
}

func TestLiveInputDeviceFailure(t *testing.T) {
	e := newTestEngine(t, WithInputProvider(&fakeInputs{err: errors.New("busy")}))

	err := e.ToggleLiveInput(context.Background(), DeckA, true, "mic")
	if !errors.Is(err, ErrDevice) {
		t.Fatalf("err = %v, want ErrDevice", err)
	}

	if got := e.Snapshot().Decks[DeckA].Status; got != StatusEmpty {
		t.Fatalf("status = %v after failure", got)
	}

	bare := newTestEngine(t)
	if err := bare.ToggleLiveInput(context.Background(), DeckA, true, "mic"); !errors.Is(err, ErrDevice) {
		t.Fatalf("no provider: %v", err)
	}

	if err := bare.ToggleLiveInput(context.Background(), DeckA, false, ""); err != nil {
		t.Fatalf("disabling an idle deck: %v", err)
	}
}
