package mixer

import (
	"log/slog"
	"time"

	"github.com/cwbudde/algo-dj/dsp/core"
	"github.com/cwbudde/algo-dj/dsp/effectchain"
)

const (
	defaultMaxRecording = 5 * time.Minute
	defaultEventBuffer  = 32
	defaultTransportBPM = 120.0
)

// Clock supplies wall-clock time for timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config holds engine settings.
type Config struct {
	core.ProcessorConfig

	Logger       *slog.Logger
	Tracks       TrackRepository
	Files        FileReader
	Inputs       effectchain.InputProvider
	Backend      effectchain.Backend
	TempoSync    bool
	MaxRecording time.Duration
	TransportBPM float64
	Clock        Clock
	EventBuffer  int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the defaults used by New.
func DefaultConfig() Config {
	return Config{
		ProcessorConfig: core.DefaultProcessorConfig(),
		Logger:          slog.New(slog.DiscardHandler),
		Files:           OSFileReader{},
		TempoSync:       true,
		MaxRecording:    defaultMaxRecording,
		TransportBPM:    defaultTransportBPM,
		Clock:           systemClock{},
		EventBuffer:     defaultEventBuffer,
	}
}

// WithSampleRate sets the engine output rate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		core.WithSampleRate(sampleRate)(&cfg.ProcessorConfig)
	}
}

// WithBlockSize sets the preferred render block size used by Stream.
func WithBlockSize(frames int) Option {
	return func(cfg *Config) {
		core.WithBlockSize(frames)(&cfg.ProcessorConfig)
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *Config) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// WithTrackRepository sets the metadata repository used by LoadTrackByID
// and for play reporting.
func WithTrackRepository(r TrackRepository) Option {
	return func(cfg *Config) { cfg.Tracks = r }
}

// WithFileReader sets how track paths are read.
func WithFileReader(r FileReader) Option {
	return func(cfg *Config) {
		if r != nil {
			cfg.Files = r
		}
	}
}

// WithInputProvider sets the live-input device provider.
func WithInputProvider(p effectchain.InputProvider) Option {
	return func(cfg *Config) { cfg.Inputs = p }
}

// WithBackend replaces the native node backend. The backend's sample rate
// and channel count take precedence over WithSampleRate.
func WithBackend(b effectchain.Backend) Option {
	return func(cfg *Config) { cfg.Backend = b }
}

// WithTempoSync enables or disables rate matching on load. The playing deck
// is set to the absolute rate loadedBPM/playingBPM, replacing any earlier
// rate. It is not reset to 1.0 when the loaded deck changes track later;
// SetTempo resets it.
func WithTempoSync(enabled bool) Option {
	return func(cfg *Config) { cfg.TempoSync = enabled }
}

// WithMaxRecording bounds the length of a deck recording.
func WithMaxRecording(d time.Duration) Option {
	return func(cfg *Config) {
		if d > 0 {
			cfg.MaxRecording = d
		}
	}
}

// WithTransportBPM sets the initial tempo of the musical clock.
func WithTransportBPM(bpm float64) Option {
	return func(cfg *Config) {
		if bpm > 0 {
			cfg.TransportBPM = bpm
		}
	}
}

// WithClock sets the wall clock used for timestamps.
func WithClock(c Clock) Option {
	return func(cfg *Config) {
		if c != nil {
			cfg.Clock = c
		}
	}
}

// WithEventBuffer sets the capacity of the Events channel.
func WithEventBuffer(n int) Option {
	return func(cfg *Config) {
		if n >= 0 {
			cfg.EventBuffer = n
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
