// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. [Bank] runs one section per
// channel with shared coefficients, which is how the deck EQ and filter stages
// process stereo blocks.
//
// Coefficient design lives in dsp/filter/design.
package biquad
