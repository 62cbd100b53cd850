// Package design provides RBJ-style biquad coefficient designers.
//
// The functions return coefficients consumable by dsp/filter/biquad. Out of
// range frequencies are clamped just below Nyquist so a deck filter swept to
// its top position stays stable at any sample rate.
package design
