package transport

import (
	"fmt"
	"math"
)

const (
	defaultBPM = 120.0

	// Sixteenth is the beat length of a 1/16 note in 4/4.
	Sixteenth = 0.25

	// beatEpsilon absorbs float drift when mapping beats to frames.
	beatEpsilon = 1e-9
)

// EventID identifies a scheduled event. The zero value is never issued.
type EventID uint64

type event struct {
	id       EventID
	beat     float64
	interval float64
	fn       func()
}

// Clock is a beat clock driven by rendered frames.
type Clock struct {
	sampleRate float64
	bpm        float64
	position   float64

	events []*event
	nextID EventID
}

// New returns a clock at beat 0. A non-positive bpm selects 120.
func New(sampleRate, bpm float64) (*Clock, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("transport sample rate must be > 0: %f", sampleRate)
	}

	c := &Clock{sampleRate: sampleRate, bpm: defaultBPM}
	c.SetBPM(bpm)

	return c, nil
}

// SetBPM changes the tempo. Scheduled events keep their beat positions.
// Non-positive or non-finite values are ignored.
func (c *Clock) SetBPM(bpm float64) {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return
	}

	c.bpm = bpm
}

// BPM returns the tempo.
func (c *Clock) BPM() float64 { return c.bpm }

// SampleRate returns the frame rate.
func (c *Clock) SampleRate() float64 { return c.sampleRate }

// Position returns the current position in beats.
func (c *Clock) Position() float64 { return c.position }

// Seconds converts a beat count to seconds at the current tempo.
func (c *Clock) Seconds(beats float64) float64 {
	return beats * 60 / c.bpm
}

// FramesPerBeat returns the length of one beat in frames.
func (c *Clock) FramesPerBeat() float64 {
	return c.sampleRate * 60 / c.bpm
}

// NextBoundary returns the first multiple of grid strictly after the current
// position. A position already on the grid advances to the following one.
func (c *Clock) NextBoundary(grid float64) float64 {
	if grid <= 0 {
		return c.position
	}

	n := math.Floor(c.position/grid+beatEpsilon) + 1

	return n * grid
}

// Schedule registers fn to run at beat and then every interval beats.
// An interval <= 0 makes the event one-shot.
func (c *Clock) Schedule(beat, interval float64, fn func()) EventID {
	if fn == nil {
		return 0
	}

	if interval < 0 || math.IsNaN(interval) {
		interval = 0
	}

	c.nextID++
	c.events = append(c.events, &event{
		id:       c.nextID,
		beat:     beat,
		interval: interval,
		fn:       fn,
	})

	return c.nextID
}

// Clear removes a scheduled event. It reports whether the event existed.
// A cleared event never fires again, even inside the current Advance.
func (c *Clock) Clear(id EventID) bool {
	for i, ev := range c.events {
		if ev.id != id {
			continue
		}

		c.events = append(c.events[:i], c.events[i+1:]...)

		return true
	}

	return false
}

// Pending returns the number of scheduled events.
func (c *Clock) Pending() int { return len(c.events) }

// Reset moves the clock to beat 0 and drops every event.
func (c *Clock) Reset() {
	c.position = 0
	c.events = nil
}

// Advance moves the clock forward by frames. render is called for each
// contiguous span [start, end) of the block between event boundaries;
// events due at a boundary fire between the spans. Events already overdue
// fire at frame 0.
func (c *Clock) Advance(frames int, render func(start, end int)) {
	if frames <= 0 {
		return
	}

	origin := c.position
	fpb := c.FramesPerBeat()
	cur := 0

	for {
		ev := c.earliest()

		at := frames
		if ev != nil {
			at = c.frameOf(ev.beat, origin, fpb)
			at = max(at, cur)
		}

		if ev == nil || at >= frames {
			break
		}

		if at > cur && render != nil {
			render(cur, at)
		}

		cur = at
		c.position = origin + float64(cur)/fpb

		// render may have cleared or rescheduled events.
		if !c.scheduled(ev) {
			continue
		}

		c.fire(ev)
	}

	if cur < frames && render != nil {
		render(cur, frames)
	}

	c.position = origin + float64(frames)/fpb
}

func (c *Clock) frameOf(beat, origin, fpb float64) int {
	offset := (beat - origin) * fpb
	if offset <= 0 {
		return 0
	}

	return int(math.Ceil(offset - beatEpsilon*fpb))
}

func (c *Clock) fire(ev *event) {
	if ev.interval > 0 {
		ev.beat += ev.interval
	} else {
		c.Clear(ev.id)
	}

	ev.fn()
}

func (c *Clock) scheduled(ev *event) bool {
	for _, e := range c.events {
		if e == ev {
			return true
		}
	}

	return false
}

func (c *Clock) earliest() *event {
	var best *event

	for _, ev := range c.events {
		if best == nil || ev.beat < best.beat {
			best = ev
		}
	}

	return best
}
