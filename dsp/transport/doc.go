// Package transport provides a shared musical clock.
//
// A Clock advances in sample frames and tracks its position in beats at the
// current tempo. Events are scheduled on beat positions and fire exactly on
// their frame: Advance splits each render block at event boundaries so
// callbacks run between the sub-block renders that precede and follow them.
//
// Clock is not safe for concurrent use; callers serialize access.
package transport
