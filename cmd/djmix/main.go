// Command djmix analyzes tracks and plays a two-deck mix in the terminal.
//
// Usage:
//
//	djmix [flags] <command> [args]
//
// Examples:
//
//	djmix analyze intro.wav peak.mp3
//	djmix play --a intro.wav --b peak.mp3
//	djmix play --a intro.wav --pad stab.wav --pad horn.wav
//	DJMIX_SAMPLE_RATE=48000 djmix --log-file djmix.log --debug play --a set.mp3
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// CLI defines the command-line interface.
type CLI struct {
	Debug      bool   `help:"Log at debug level." env:"DJMIX_DEBUG"`
	LogFile    string `name:"log-file" type:"path" help:"Write logs to this file." env:"DJMIX_LOG_FILE"`
	SampleRate int    `name:"sample-rate" default:"44100" help:"Output sample rate in Hz." env:"DJMIX_SAMPLE_RATE"`

	Analyze analyzeCmd `cmd:"" help:"Print duration, tempo and a waveform preview of audio files."`
	Play    playCmd    `cmd:"" help:"Play a mix on the default audio device."`
}

// globals is bound into every command's Run method.
type globals struct {
	logger     *slog.Logger
	sampleRate float64
	toTerminal bool
}

func main() {
	var cli CLI

	kctx := kong.Parse(&cli,
		kong.Name("djmix"),
		kong.Description("Two-deck DJ mixer with EQ, filter, loop rolls and sample pads."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	logger, closeLog, err := newLogger(cli.Debug, cli.LogFile)
	kctx.FatalIfErrorf(err)
	defer closeLog()

	err = kctx.Run(&globals{
		logger:     logger,
		sampleRate: float64(cli.SampleRate),
		toTerminal: cli.LogFile == "",
	})
	kctx.FatalIfErrorf(err)
}

func newLogger(debug bool, path string) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var (
		w       io.Writer = os.Stderr
		closeFn           = func() {}
	)

	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}

		w = f
		closeFn = func() { _ = f.Close() }
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}
