package mixer

import (
	"testing"

	"github.com/cwbudde/algo-dj/dsp/buffer"
	"github.com/cwbudde/algo-dj/dsp/core"
	"github.com/cwbudde/algo-dj/dsp/effectchain"
	"github.com/cwbudde/algo-dj/internal/testutil"
)

func startRolling(t *testing.T, interval float64) (*Engine, []float64) {
	t.Helper()

	e := newTestEngine(t)
	ramp := testutil.Ramp(16000)
	loadMono(t, e, DeckA, "ramp", 120, ramp)
	e.SetCrossfader(0)
	e.Play(DeckA)
	render(e, 800)

	e.StartLoopRoll(DeckA, interval)

	return e, ramp
}

func TestLoopRollQuantizedToSixteenth(t *testing.T) {
	e, ramp := startRolling(t, 0.25)

	// 120 BPM at 8 kHz: 4000 frames per beat. The clock sits at beat 0.2,
	// so the first repeat lands on beat 0.25, 200 frames into the block.
	out := render(e, 400)

	for i := range 200 {
		if out[0][i] != 0 {
			t.Fatalf("frame %d = %v before the first repeat", i, out[0][i])
		}
	}

	testutil.RequireNearlyEqual(t, "first repeat", out[0][200], ramp[800], 1e-12)
	testutil.RequireNearlyEqual(t, "second frame", out[0][201], ramp[801], 1e-12)

	// The 1/4-beat window is 1000 frames, repeating every 1000 frames.
	out = render(e, 1000)
	testutil.RequireNearlyEqual(t, "wrap", out[0][800], ramp[800], 1e-12)
}

func TestLoopRollStopRestoresVolumeAndOffset(t *testing.T) {
	e, _ := startRolling(t, 1)

	d := e.decks[DeckA]
	if d.player().Volume() != 0 {
		t.Fatal("main player not muted during roll")
	}

	s := e.Snapshot()
	if !s.Decks[DeckA].LoopRoll.Active || s.Decks[DeckA].LoopRoll.Interval != 1 || s.Transport.Pending != 1 {
		t.Fatalf("roll state = %+v pending %d", s.Decks[DeckA].LoopRoll, s.Transport.Pending)
	}

	render(e, 4000)
	e.StopLoopRoll(DeckA)

	if d.player().Volume() != 1 {
		t.Fatal("main player still muted")
	}

	if d.chain.Overlay() != nil || e.clock.Pending() != 0 {
		t.Fatal("roll not torn down")
	}

	s = e.Snapshot()
	if s.Decks[DeckA].LoopRoll.Active || !s.Decks[DeckA].IsPlaying {
		t.Fatalf("after stop: %+v", s.Decks[DeckA])
	}

	testutil.RequireNearlyEqual(t, "snap back", s.Decks[DeckA].Position, 0.1, 1e-9)
}

func TestLoopRollWindowFollowsRate(t *testing.T) {
	e := newTestEngine(t)
	ramp := testutil.Ramp(16000)
	loadMono(t, e, DeckA, "ramp", 120, ramp)
	e.SetCrossfader(0)
	e.SetTempo(DeckA, 2)
	e.Play(DeckA)
	render(e, 800) // head at buffer frame 1600

	e.StartLoopRoll(DeckA, 0.25)

	out := render(e, 400)
	testutil.RequireNearlyEqual(t, "first repeat", out[0][200], ramp[1600], 1e-12)
	testutil.RequireNearlyEqual(t, "double speed", out[0][201], ramp[1602], 1e-12)

	// At rate 2 the 1000-frame repeat covers 2000 buffer frames, so the
	// window runs to its end without wrapping early.
	out = render(e, 1000)
	testutil.RequireNearlyEqual(t, "late in window", out[0][700], ramp[3400], 1e-12)
	testutil.RequireNearlyEqual(t, "next repeat", out[0][800], ramp[1600], 1e-12)
}

func TestLoopRollReplacesPrevious(t *testing.T) {
	e, _ := startRolling(t, 0.5)
	e.StartLoopRoll(DeckA, 2)

	if n := e.clock.Pending(); n != 1 {
		t.Fatalf("pending events = %d, want 1", n)
	}

	if got := e.Snapshot().Decks[DeckA].LoopRoll.Interval; got != 2 {
		t.Fatalf("interval = %v", got)
	}
}

func TestLoopRollIgnored(t *testing.T) {
	e := newTestEngine(t)
	loadMono(t, e, DeckA, "a", 120, testutil.DC(0.5, 8000))

	e.StartLoopRoll(DeckA, 1)

	if e.Snapshot().Decks[DeckA].LoopRoll.Active {
		t.Fatal("roll started on a stopped deck")
	}

	e.Play(DeckA)
	e.StartLoopRoll(DeckA, 0.3)

	if e.Snapshot().Decks[DeckA].LoopRoll.Active {
		t.Fatal("roll started with an unsupported interval")
	}
}

func TestPauseCancelsLoopRoll(t *testing.T) {
	e, _ := startRolling(t, 0.5)
	e.Pause(DeckA)

	if e.clock.Pending() != 0 || e.decks[DeckA].roll != nil {
		t.Fatal("roll survived pause")
	}

	if e.decks[DeckA].player().Volume() != 1 {
		t.Fatal("pause left the player muted")
	}
}

func TestTransportFollowsLoadedTempo(t *testing.T) {
	e := newTestEngine(t, WithTransportBPM(100))

	if got := e.Snapshot().Transport.BPM; got != 100 {
		t.Fatalf("initial BPM = %v", got)
	}

	loadMono(t, e, DeckB, "b", 140, testutil.DC(0.1, 800))

	if got := e.Snapshot().Transport.BPM; got != 140 {
		t.Fatalf("BPM after load = %v", got)
	}

	e.SetTransportBPM(90)
	e.SetTransportBPM(-5)

	if got := e.Snapshot().Transport.BPM; got != 90 {
		t.Fatalf("BPM = %v", got)
	}
}

// closedStartCounter is a backend whose players count Start calls made
// after Close.
type closedStartCounter struct {
	*effectchain.Native
	late int
}

func (b *closedStartCounter) NewPlayer(buf *buffer.PCM) (effectchain.Player, error) {
	p, err := b.Native.NewPlayer(buf)
	if err != nil {
		return nil, err
	}

	return &watchedPlayer{Player: p, owner: b}, nil
}

type watchedPlayer struct {
	effectchain.Player
	owner  *closedStartCounter
	closed bool
}

func (p *watchedPlayer) Start(offset float64) {
	if p.closed {
		p.owner.late++
	}

	p.Player.Start(offset)
}

func (p *watchedPlayer) Close() {
	p.closed = true
	p.Player.Close()
}

func TestTrackEndBeforeFirstRepeatCancelsRoll(t *testing.T) {
	native, err := effectchain.NewNative(effectchain.NewContext(core.WithSampleRate(testRate)), nil)
	if err != nil {
		t.Fatalf("NewNative: %v", err)
	}

	backend := &closedStartCounter{Native: native}
	e := newTestEngine(t, WithBackend(backend))

	// 120 BPM at 8 kHz. The track ends at frame 950, before the first
	// repeat on beat 0.25 (frame 1000).
	loadMono(t, e, DeckA, "short", 120, testutil.Ramp(950))
	e.Play(DeckA)
	render(e, 800)

	e.StartLoopRoll(DeckA, 0.25)
	render(e, 400)

	s := e.Snapshot()
	if s.Decks[DeckA].Status != StatusStopped || s.Decks[DeckA].LoopRoll.Active {
		t.Fatalf("deck = %v roll %+v", s.Decks[DeckA].Status, s.Decks[DeckA].LoopRoll)
	}

	if s.Transport.Pending != 0 {
		t.Fatalf("pending = %d, want 0", s.Transport.Pending)
	}

	if backend.late != 0 {
		t.Fatalf("roll restarted a closed overlay %d time(s)", backend.late)
	}
}
