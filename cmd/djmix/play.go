package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ebitengine/oto/v3"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-dj/mixer"
)

type playCmd struct {
	A    string   `short:"a" type:"existingfile" help:"Track for deck A." env:"DJMIX_DECK_A"`
	B    string   `short:"b" type:"existingfile" help:"Track for deck B." env:"DJMIX_DECK_B"`
	Pads []string `name:"pad" type:"existingfile" help:"Files added as sample pads on deck A (repeatable)."`

	BlockSize int     `name:"block-size" default:"512" help:"Frames rendered per audio callback." env:"DJMIX_BLOCK_SIZE"`
	ToneHz    float64 `name:"tone" default:"440" help:"Frequency of the test tone used as live input."`
	NoSync    bool    `name:"no-sync" help:"Do not match the playing deck's tempo when loading."`
}

func (c *playCmd) Run(g *globals) error {
	logger := g.logger
	if g.toTerminal {
		// The status view owns the terminal.
		logger = slog.New(slog.DiscardHandler)
	}

	engine, err := mixer.New(
		mixer.WithSampleRate(g.sampleRate),
		mixer.WithBlockSize(c.BlockSize),
		mixer.WithLogger(logger),
		mixer.WithTempoSync(!c.NoSync),
		mixer.WithInputProvider(toneProvider{freq: c.ToneHz, sampleRate: g.sampleRate}),
	)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := c.load(ctx, engine); err != nil {
		return err
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(engine.SampleRate()),
		ChannelCount: engine.Channels(),
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	player := otoCtx.NewPlayer(engine.Stream())
	player.Play()
	defer player.Close()

	program := tea.NewProgram(newModel(engine), tea.WithAltScreen(), tea.WithContext(ctx))

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer stop()

		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}

		return err
	})
	eg.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-engine.Events():
				if !ok {
					return nil
				}

				program.Send(eventMsg(ev))
			}
		}
	})

	return eg.Wait()
}

// load fills both decks and the pads.
func (c *playCmd) load(ctx context.Context, engine *mixer.Engine) error {
	eg, ctx := errgroup.WithContext(ctx)

	for id, path := range map[mixer.DeckID]string{mixer.DeckA: c.A, mixer.DeckB: c.B} {
		if path == "" {
			continue
		}

		eg.Go(func() error {
			if err := engine.LoadFile(ctx, id, path); err != nil {
				return fmt.Errorf("deck %s: %w", id, err)
			}

			return nil
		})
	}

	// Pads fill in order, so they stay sequential.
	eg.Go(func() error {
		for _, path := range c.Pads {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			if _, err := engine.AddSampleBytes(ctx, mixer.DeckA, filepath.Base(path), data); err != nil {
				return fmt.Errorf("pad %s: %w", path, err)
			}
		}

		return nil
	})

	return eg.Wait()
}
