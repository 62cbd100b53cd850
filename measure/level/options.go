package level

import "github.com/cwbudde/algo-dj/dsp/core"

const defaultSmoothing = 0.8

// MeterConfig defines configuration for the level meter.
type MeterConfig struct {
	core.ProcessorConfig

	// Smoothing is the weight of the previous reading in [0,1).
	Smoothing float64
}

// MeterOption mutates a MeterConfig.
type MeterOption func(*MeterConfig)

// DefaultMeterConfig returns defaults matching a browser analyser node.
func DefaultMeterConfig() MeterConfig {
	return MeterConfig{
		ProcessorConfig: core.DefaultProcessorConfig(),
		Smoothing:       defaultSmoothing,
	}
}

// WithChannels sets how many leading channels are measured.
func WithChannels(channels int) MeterOption {
	return func(cfg *MeterConfig) {
		if channels > 0 {
			cfg.Channels = channels
		}
	}
}

// WithSmoothing sets the smoothing constant, clamped to [0, 0.99].
func WithSmoothing(s float64) MeterOption {
	return func(cfg *MeterConfig) {
		cfg.Smoothing = core.Clamp(core.Unit(s), 0, 0.99)
	}
}

// ApplyMeterOptions applies zero or more options to the default config.
func ApplyMeterOptions(opts ...MeterOption) MeterConfig {
	cfg := DefaultMeterConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
