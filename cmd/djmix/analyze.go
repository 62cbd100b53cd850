package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-dj/internal/codec"
	"github.com/cwbudde/algo-dj/measure/tempo"
	"github.com/cwbudde/algo-dj/measure/waveform"
)

type analyzeCmd struct {
	Files []string `arg:"" name:"file" type:"existingfile" help:"Audio files (WAV or MP3)."`
	Width int      `default:"64" help:"Width of the waveform preview."`
}

type analysis struct {
	name       string
	format     codec.Format
	sampleRate float64
	channels   int
	duration   float64
	tempo      tempo.Estimate
	tempoErr   error
	peaks      [waveform.Buckets]float64
}

var (
	nameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F2A900"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	waveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3FA7D6"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D1495B"))
)

func (c *analyzeCmd) Run(g *globals) error {
	results := make([]analysis, len(c.Files))

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())

	for i, path := range c.Files {
		eg.Go(func() error {
			res, err := analyzeFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			results[i] = res
			g.logger.Debug("analyzed", "file", path, "bpm", res.tempo.BPM, "lag", res.tempo.Lag)

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	for _, res := range results {
		fmt.Println(render(res, c.Width))
	}

	return nil
}

func analyzeFile(path string) (analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return analysis{}, err
	}

	pcm, err := codec.Decode(data)
	if err != nil {
		return analysis{}, err
	}
	defer pcm.Release()

	samples := pcm.Channel(0)
	est, tempoErr := tempo.Analyze(samples, pcm.SampleRate())

	return analysis{
		name:       filepath.Base(path),
		format:     codec.Sniff(data),
		sampleRate: pcm.SampleRate(),
		channels:   pcm.Channels(),
		duration:   pcm.Duration(),
		tempo:      est,
		tempoErr:   tempoErr,
		peaks:      waveform.Peaks(samples),
	}, nil
}

func render(res analysis, width int) string {
	var b strings.Builder

	b.WriteString(nameStyle.Render(res.name))
	b.WriteString("\n")

	bpm := fmt.Sprintf("%d BPM (strength %.2f)", res.tempo.BPM, res.tempo.Strength)
	if res.tempoErr != nil {
		bpm = errorStyle.Render(fmt.Sprintf("%d BPM (fallback: %v)", tempo.DefaultBPM, res.tempoErr))
	}

	b.WriteString(infoStyle.Render(fmt.Sprintf("  %s  %s  %.0f Hz  %d ch  ",
		res.format, clock(res.duration), res.sampleRate, res.channels)))
	b.WriteString(bpm)
	b.WriteString("\n  ")
	b.WriteString(waveStyle.Render(sparkline(res.peaks[:], width, -1)))

	return b.String()
}

var bars = []rune("▁▂▃▄▅▆▇█")

// sparkline folds peaks into width columns. The column holding mark, a
// fraction in [0,1], is drawn as a cursor; a negative mark draws none.
func sparkline(peaks []float64, width int, mark float64) string {
	if width <= 0 || len(peaks) == 0 {
		return ""
	}

	cursor := -1
	if mark >= 0 {
		cursor = min(int(mark*float64(width)), width-1)
	}

	out := make([]rune, width)
	for col := range width {
		lo := col * len(peaks) / width
		hi := max((col+1)*len(peaks)/width, lo+1)

		var peak float64
		for _, v := range peaks[lo:min(hi, len(peaks))] {
			peak = max(peak, v)
		}

		out[col] = bars[min(int(peak*float64(len(bars))), len(bars)-1)]
		if col == cursor {
			out[col] = '│'
		}
	}

	return string(out)
}

// clock formats seconds as m:ss.
func clock(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
