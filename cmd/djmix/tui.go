package main

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-dj/dsp/effectchain"
	"github.com/cwbudde/algo-dj/mixer"
)

const (
	refreshInterval = 50 * time.Millisecond
	waveWidth       = 40
	meterWidth      = 24
	seekStep        = 5.0
	eqStep          = 3.0
)

type tickMsg time.Time

type eventMsg mixer.Event

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(waveWidth + 4)
	focusStyle = panelStyle.BorderForeground(lipgloss.Color("#F2A900"))
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F2A900"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	hotStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D1495B"))
	meterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#66A182"))
)

type model struct {
	engine *mixer.Engine
	state  mixer.State
	focus  mixer.DeckID
	status string
}

func newModel(engine *mixer.Engine) model {
	return model{engine: engine, state: engine.Snapshot()}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.state = m.engine.Snapshot()
		return m, tick()

	case eventMsg:
		m.status = fmt.Sprintf("deck %s: %s", msg.Deck, msg.Kind)
		if msg.Kind == mixer.EventTempoSynced {
			m.status += fmt.Sprintf(" (rate %.3f)", msg.Rate)
		}

	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		m.handleKey(msg.String())
		m.state = m.engine.Snapshot()
	}

	return m, nil
}

func (m *model) handleKey(key string) {
	e, id := m.engine, m.focus
	deck := m.state.Decks[id]

	switch key {
	case "tab":
		m.focus = 1 - m.focus
	case " ":
		e.TogglePlay(id)
	case "x":
		e.Stop(id)
	case "c":
		e.SetCue(id)
	case "v":
		e.JumpToCue(id)
	case "left":
		e.Seek(id, deck.Position-seekStep)
	case "right":
		e.Seek(id, deck.Position+seekStep)
	case "up":
		e.SetVolume(id, deck.Volume+0.1)
	case "down":
		e.SetVolume(id, deck.Volume-0.1)
	case ",":
		e.SetCrossfader(m.state.Crossfader - 0.05)
	case ".":
		e.SetCrossfader(m.state.Crossfader + 0.05)
	case "-":
		e.SetTempo(id, deck.PlaybackRate-0.01)
	case "=":
		e.SetTempo(id, deck.PlaybackRate+0.01)
	case "1", "2", "3", "4":
		e.StartLoopRoll(id, mixer.RollIntervals[key[0]-'1'])
	case "0":
		e.StopLoopRoll(id)
	case "j", "k", "l":
		band := effectchain.Band(strings.Index("jkl", key))
		e.SetEQ(id, band, eqGain(deck.EQ, band)+eqStep)
	case "u", "i", "o":
		band := effectchain.Band(strings.Index("uio", key))
		e.SetEQ(id, band, eqGain(deck.EQ, band)-eqStep)
	case "f":
		e.SetEffects(id, 0.35, 0.6, !deck.Effects.Active)
	case "r":
		if !deck.IsRecording {
			e.StartRecording(id)
			return
		}

		if smp, err := e.StopRecording(id); err != nil {
			m.status = err.Error()
		} else {
			m.status = fmt.Sprintf("recorded %.1fs into pad %d", smp.Duration, smp.Slot+1)
		}
	case "t":
		if err := e.ToggleLiveInput(context.Background(), id, !deck.IsLiveInput, "tone"); err != nil {
			m.status = err.Error()
		}
	case "p":
		if smp, err := e.LoadTrackAsSample(id); err != nil {
			m.status = err.Error()
		} else {
			m.status = fmt.Sprintf("track copied to pad %d", smp.Slot+1)
		}
	case "f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8":
		if _, err := e.TriggerSample(id, int(key[1]-'1')); err != nil {
			m.status = err.Error()
		}
	}
}

func eqGain(eq mixer.EQ, band effectchain.Band) float64 {
	switch band {
	case effectchain.BandLow:
		return eq.Low
	case effectchain.BandMid:
		return eq.Mid
	default:
		return eq.High
	}
}

func (m model) View() string {
	var panels []string

	for i, d := range m.state.Decks {
		style := panelStyle
		if mixer.DeckID(i) == m.focus {
			style = focusStyle
		}

		panels = append(panels, style.Render(deckView(d)))
	}

	a, b := mixer.CrossfadeGains(m.state.Crossfader)

	var s strings.Builder
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf(" A %s B   gains %.2f / %.2f   master %s   transport %.1f BPM beat %.2f\n",
		fader(m.state.Crossfader, 21), a, b, meter(m.state.MasterLevelDB),
		m.state.Transport.BPM, m.state.Transport.Beat))
	s.WriteString(" " + hotStyle.Render(m.status) + "\n")
	s.WriteString(dimStyle.Render(" tab deck  space play  x stop  c/v cue  ←/→ seek  ↑/↓ vol  ,/. xfade  -/= tempo\n" +
		" 1-4 roll 0 unroll  j/k/l u/i/o eq  f fx  r rec  t live  p track→pad  F1-F8 pads  q quit"))

	return s.String()
}

func deckView(d mixer.DeckState) string {
	var s strings.Builder

	name := "(empty)"
	var peaks []float64
	bpm := 0.0

	if d.Track != nil {
		name = d.Track.Name
		peaks = d.Track.Peaks[:]
		bpm = d.Track.EffectiveBPM()
		if bpm == 0 {
			bpm = float64(d.Track.DetectedBPM)
		}
	}

	s.WriteString(titleStyle.Render(fmt.Sprintf("Deck %s", d.Deck)) + " " + name + "\n")
	s.WriteString(fmt.Sprintf("%-8s %s / %s  %.0f BPM x%.2f\n",
		d.Status, clock(d.Position), clock(d.Duration), bpm, d.PlaybackRate))

	mark := -1.0
	if d.Duration > 0 {
		mark = d.Position / d.Duration
	}

	if peaks != nil {
		s.WriteString(meterStyle.Render(sparkline(peaks, waveWidth, mark)) + "\n")
	} else {
		s.WriteString(strings.Repeat(" ", waveWidth) + "\n")
	}

	s.WriteString(fmt.Sprintf("vol %s  %s\n", fader(d.Volume, 10), meter(d.MeterDB)))
	s.WriteString(fmt.Sprintf("eq  low %+5.1f  mid %+5.1f  high %+5.1f\n", d.EQ.Low, d.EQ.Mid, d.EQ.High))

	fx := dimStyle.Render("fx off")
	if d.Effects.Active {
		fx = fmt.Sprintf("fx x %.2f y %.2f", d.Effects.X, d.Effects.Y)
	}

	var flags []string
	if d.LoopRoll.Active {
		flags = append(flags, hotStyle.Render(fmt.Sprintf("roll %g", d.LoopRoll.Interval)))
	}

	if d.IsRecording {
		flags = append(flags, hotStyle.Render("● rec"))
	}

	if d.HasCue {
		flags = append(flags, "cue "+clock(d.Cue))
	}

	s.WriteString(fx + "  " + strings.Join(flags, "  ") + "\n")
	s.WriteString(pads(d.Samples))

	return s.String()
}

func pads(samples [mixer.SlotCount]*mixer.Sample) string {
	cells := make([]string, len(samples))

	for i, smp := range samples {
		switch {
		case smp == nil:
			cells[i] = dimStyle.Render("·")
		case smp.Playing:
			cells[i] = hotStyle.Render(fmt.Sprint(i + 1))
		default:
			cells[i] = fmt.Sprint(i + 1)
		}
	}

	return "pads " + strings.Join(cells, " ")
}

// fader draws v in [0,1] as a slider of width cells.
func fader(v float64, width int) string {
	pos := int(math.Round(v * float64(width-1)))

	var s strings.Builder
	for i := range width {
		if i == pos {
			s.WriteRune('●')
		} else {
			s.WriteRune('─')
		}
	}

	return s.String()
}

// meter draws a level in dBFS over a -60..0 dB range.
func meter(db float64) string {
	fill := 0
	if !math.IsInf(db, -1) {
		fill = int(math.Round((db + 60) / 60 * meterWidth))
		fill = max(0, min(fill, meterWidth))
	}

	label := "-inf"
	if !math.IsInf(db, -1) {
		label = fmt.Sprintf("%.1f", db)
	}

	return meterStyle.Render(strings.Repeat("▮", fill)) +
		dimStyle.Render(strings.Repeat("▯", meterWidth-fill)) + " " + label + " dB"
}
