package core

import "testing"

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(48000), WithBlockSize(512), WithChannels(1))
	if cfg.SampleRate != 48000 {
		t.Fatalf("sample rate = %v, want 48000", cfg.SampleRate)
	}
	if cfg.BlockSize != 512 {
		t.Fatalf("block size = %d, want 512", cfg.BlockSize)
	}
	if cfg.Channels != 1 {
		t.Fatalf("channels = %d, want 1", cfg.Channels)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(0), WithBlockSize(-1), WithChannels(0), nil)
	def := DefaultProcessorConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}
