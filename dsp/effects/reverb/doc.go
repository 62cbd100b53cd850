// Package reverb provides the deck send reverb.
//
// Reverb is a stereo Schroeder/Freeverb-style network: eight damped
// lowpass-feedback combs in parallel followed by four series allpasses per
// channel. Comb feedback is derived from a decay time so the tail length is
// stable across sample rates.
package reverb
