// Package buffer holds decoded audio for playback.
//
// A PCM buffer is immutable after construction and shared by reference: a
// track and any number of samples cut from it point at the same data. Owners
// call Retain and Release; the data is dropped when the last owner lets go.
// Cache deduplicates decodes without keeping buffers alive, and Pool recycles
// planar scratch blocks for render loops.
package buffer
