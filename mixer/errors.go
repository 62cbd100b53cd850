package mixer

import "errors"

var (
	// ErrDecode is returned when audio bytes cannot be decoded. The deck
	// keeps its previous state.
	ErrDecode = errors.New("mixer: decode failed")

	// ErrDevice is returned when a live input cannot be opened.
	ErrDevice = errors.New("mixer: live input device")

	// ErrSlotsFull is returned when every sample slot of a deck is taken.
	ErrSlotsFull = errors.New("mixer: sample slots full")

	// ErrEmptyRecording is returned when a recording captured no frames.
	ErrEmptyRecording = errors.New("mixer: empty recording")

	// ErrInvalidState is returned by intents that produce a value when the
	// deck, slot or session they address does not allow it. Intents without
	// a result ignore such requests.
	ErrInvalidState = errors.New("mixer: invalid state")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("mixer: engine closed")
)
