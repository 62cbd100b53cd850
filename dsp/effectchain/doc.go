// Package effectchain builds the per-deck signal chains of the mixer and the
// master bus they feed.
//
// Every chain has the same fixed topology:
//
//	source (file player | live input) [+ overlay]
//	  -> 3-band EQ -> lowpass filter -> reverb -> meter -> deck gain -> bus
//
// Nodes are created through a Backend. Native is the pure-Go backend; its
// node constructors live in a Registry so individual kinds can be replaced.
// A Graph owns at most one Chain per deck and renders them into the bus
// before applying the master gain and master meter.
//
// Nothing in this package is safe for concurrent use. The mixer serializes
// every call.
package effectchain
