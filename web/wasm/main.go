//go:build js && wasm

package main

import (
	"context"
	"syscall/js"

	"github.com/cwbudde/algo-dj/dsp/core"
	"github.com/cwbudde/algo-dj/dsp/effectchain"
	"github.com/cwbudde/algo-dj/mixer"
)

var (
	engine *mixer.Engine
	block  [][]float64
	funcs  []js.Func
)

func main() {
	api := js.Global().Get("Object").New()
	api.Set("init", export(func(args []js.Value) any {
		sr := 48000.0
		if len(args) > 0 {
			sr = args[0].Float()
		}
		if engine != nil {
			_ = engine.Close()
		}
		e, err := mixer.New(mixer.WithSampleRate(sr))
		if err != nil {
			return err.Error()
		}
		engine = e
		return js.Null()
	}))

	api.Set("loadTrack", export(func(args []js.Value) any {
		if engine == nil || len(args) < 3 {
			return js.Null()
		}
		if err := engine.LoadBytes(context.Background(), deck(args[0]), args[1].String(), bytes(args[2])); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("addSample", export(func(args []js.Value) any {
		if engine == nil || len(args) < 3 {
			return js.Null()
		}
		smp, err := engine.AddSampleBytes(context.Background(), deck(args[0]), args[1].String(), bytes(args[2]))
		if err != nil {
			return err.Error()
		}
		return smp.Slot
	}))

	api.Set("play", intent(func(args []js.Value) { engine.Play(deck(args[0])) }, 1))
	api.Set("pause", intent(func(args []js.Value) { engine.Pause(deck(args[0])) }, 1))
	api.Set("stop", intent(func(args []js.Value) { engine.Stop(deck(args[0])) }, 1))
	api.Set("seek", intent(func(args []js.Value) { engine.Seek(deck(args[0]), args[1].Float()) }, 2))
	api.Set("setTempo", intent(func(args []js.Value) { engine.SetTempo(deck(args[0]), args[1].Float()) }, 2))
	api.Set("setCue", intent(func(args []js.Value) { engine.SetCue(deck(args[0])) }, 1))
	api.Set("jumpToCue", intent(func(args []js.Value) { engine.JumpToCue(deck(args[0])) }, 1))
	api.Set("setVolume", intent(func(args []js.Value) { engine.SetVolume(deck(args[0]), args[1].Float()) }, 2))
	api.Set("setCrossfader", intent(func(args []js.Value) { engine.SetCrossfader(args[0].Float()) }, 1))
	api.Set("setMasterVolume", intent(func(args []js.Value) { engine.SetMasterVolume(args[0].Float()) }, 1))

	api.Set("setEQ", intent(func(args []js.Value) {
		p := args[1]
		id := deck(args[0])
		engine.SetEQ(id, effectchain.BandLow, p.Get("low").Float())
		engine.SetEQ(id, effectchain.BandMid, p.Get("mid").Float())
		engine.SetEQ(id, effectchain.BandHigh, p.Get("high").Float())
	}, 2))

	api.Set("setEffects", intent(func(args []js.Value) {
		engine.SetEffects(deck(args[0]), args[1].Float(), args[2].Float(), args[3].Bool())
	}, 4))

	api.Set("startLoopRoll", intent(func(args []js.Value) { engine.StartLoopRoll(deck(args[0]), args[1].Float()) }, 2))
	api.Set("stopLoopRoll", intent(func(args []js.Value) { engine.StopLoopRoll(deck(args[0])) }, 1))
	api.Set("triggerSample", intent(func(args []js.Value) { engine.TriggerSample(deck(args[0]), args[1].Int()) }, 2))
	api.Set("stopSample", intent(func(args []js.Value) { engine.StopSample(deck(args[0]), args[1].Int()) }, 2))
	api.Set("clearSample", intent(func(args []js.Value) { engine.ClearSample(deck(args[0]), args[1].Int()) }, 2))
	api.Set("startRecording", intent(func(args []js.Value) { engine.StartRecording(deck(args[0])) }, 1))

	api.Set("stopRecording", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}
		smp, err := engine.StopRecording(deck(args[0]))
		if err != nil {
			return err.Error()
		}
		return smp.Slot
	}))

	api.Set("render", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		frames := args[0].Int()
		block = core.EnsureBlock(block, engine.Channels(), frames)
		engine.Render(block)
		channels := len(block)
		arr := js.Global().Get("Float32Array").New(frames * channels)
		for i := 0; i < frames; i++ {
			for ch := 0; ch < channels; ch++ {
				arr.SetIndex(i*channels+ch, block[ch][i])
			}
		}
		return arr
	}))

	api.Set("eqResponse", export(func(args []js.Value) any {
		if engine == nil || len(args) < 2 {
			return js.Global().Get("Float32Array").New(0)
		}
		input := args[1]
		freqs := make([]float64, input.Length())
		for i := 0; i < input.Length(); i++ {
			freqs[i] = input.Index(i).Float()
		}
		resp := engine.EQResponse(deck(args[0]), freqs)
		arr := js.Global().Get("Float32Array").New(len(resp))
		for i := range resp {
			arr.SetIndex(i, resp[i])
		}
		return arr
	}))

	api.Set("snapshot", export(func(args []js.Value) any {
		if engine == nil {
			return js.Null()
		}
		return snapshot(engine.Snapshot())
	}))

	js.Global().Set("AlgoDJ", api)
	select {}
}

func snapshot(s mixer.State) any {
	decks := make([]any, len(s.Decks))
	for i, d := range s.Decks {
		name := ""
		if d.Track != nil {
			name = d.Track.Name
		}
		decks[i] = map[string]any{
			"status":       d.Status.String(),
			"track":        name,
			"position":     d.Position,
			"duration":     d.Duration,
			"volume":       d.Volume,
			"playbackRate": d.PlaybackRate,
			"meterDb":      finite(d.MeterDB),
			"isRecording":  d.IsRecording,
			"loopRoll":     d.LoopRoll.Active,
		}
	}
	return map[string]any{
		"decks":         decks,
		"crossfader":    s.Crossfader,
		"masterVolume":  s.MasterVolume,
		"masterLevelDb": finite(s.MasterLevelDB),
		"bpm":           s.Transport.BPM,
	}
}

// finite maps -Inf to a floor JSON can carry.
func finite(db float64) float64 {
	if db < -200 {
		return -200
	}
	return db
}

func deck(v js.Value) mixer.DeckID {
	return mixer.DeckID(v.Int())
}

func bytes(v js.Value) []byte {
	out := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(out, v)
	return out
}

// intent exports a void engine call taking at least n arguments.
func intent(fn func([]js.Value), n int) js.Func {
	return export(func(args []js.Value) any {
		if engine == nil || len(args) < n {
			return js.Null()
		}
		fn(args)
		return js.Null()
	})
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
