// Package mixer is a two-deck DJ engine.
//
// An Engine owns two decks, each with its own signal chain (EQ, lowpass,
// reverb send, meter and fader gain), a sampler with eight pads per deck, a
// shared musical clock for beat-quantized loop rolls, per-deck recording,
// and a constant-power crossfader feeding the master bus.
//
// All intents (LoadTrack, Play, SetCrossfader, TriggerSample, ...) and Render
// serialize on one mutex, so every intent runs to completion before the next
// block is rendered. Decoding, file reads and opening live inputs happen
// outside the lock; when a newer load for the same deck starts first, the
// older result is discarded.
//
// State is observed by polling Snapshot, either directly or through Observe,
// and through the Events channel.
package mixer
