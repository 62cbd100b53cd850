package mixer

import (
	"context"
	"os"
	"time"

	"github.com/cwbudde/algo-dj/dsp/buffer"
	"github.com/cwbudde/algo-dj/measure/waveform"
)

// LiveInputName is the name of the placeholder track of a live-only deck.
const LiveInputName = "Live Input"

// Track is a library entry together with its analysis results.
type Track struct {
	ID     string
	Name   string
	Artist string
	Album  string
	Key    string

	// BPM is a tempo hint from the library. Zero means unknown.
	BPM float64

	Path       string
	LastPlayed time.Time

	// Filled in by analysis at load time.
	DetectedBPM int

	// TempoFallback marks DetectedBPM as tempo.DefaultBPM because analysis
	// found no tempo. Such a track has no known BPM.
	TempoFallback bool

	Peaks       [waveform.Buckets]float64
	Duration    float64

	// LiveInput marks the placeholder used when a deck is fed only by live
	// input.
	LiveInput bool

	// Buffer, when set on a track passed to LoadTrack, is used instead of
	// reading Path. The engine takes its own reference.
	Buffer *buffer.PCM
}

// EffectiveBPM returns the library hint when known, else the detected tempo.
// It is 0 when neither is known.
func (t Track) EffectiveBPM() float64 {
	if t.BPM > 0 {
		return t.BPM
	}

	if t.TempoFallback {
		return 0
	}

	return float64(t.DetectedBPM)
}

// TrackUpdate is a partial update reported to the repository. Nil fields
// are left unchanged.
type TrackUpdate struct {
	ID          string
	LastPlayed  *time.Time
	DetectedBPM *int
	Duration    *float64
}

// TrackRepository is the external metadata store.
type TrackRepository interface {
	GetTrack(ctx context.Context, id string) (Track, error)
	UpdateTrack(ctx context.Context, update TrackUpdate) error
}

// FileReader reads encoded audio files.
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// OSFileReader reads from the local filesystem.
type OSFileReader struct{}

// ReadFile reads path unless ctx is already done.
func (OSFileReader) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
