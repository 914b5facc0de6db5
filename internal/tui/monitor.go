// SPDX-License-Identifier: MIT
/*
Package tui implements the terminal monitor: a small Bubble Tea program
showing the live engine state (mode, bass energy, beats, stream clients)
with number-key mode switching.
*/
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"visualizer/internal/analysis"
	"visualizer/internal/render"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	beatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// pollInterval is how often the monitor samples the engine state.
const pollInterval = 100 * time.Millisecond

// beatFlashTicks is how many polls the beat indicator stays lit.
const beatFlashTicks = 3

// ModeObserver is notified when the user switches modes, so transports
// can stamp outgoing events with the current mode name.
type ModeObserver interface {
	SetModeName(name string)
}

type tickMsg time.Time

// MonitorModel is the Bubble Tea model for the engine monitor.
type MonitorModel struct {
	loop       *render.Loop
	observer   ModeObserver
	streamAddr string
	clients    func() int

	lastBeat  analysis.BeatState
	beatFlash int
	width     int
}

// NewMonitor creates the monitor model. observer and clients may be nil.
func NewMonitor(loop *render.Loop, observer ModeObserver, streamAddr string, clients func() int) MonitorModel {
	return MonitorModel{
		loop:       loop,
		observer:   observer,
		streamAddr: streamAddr,
		clients:    clients,
	}
}

// Init starts the poll ticker.
func (m MonitorModel) Init() tea.Cmd {
	return pollTick()
}

func pollTick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles key presses and poll ticks.
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		m.lastBeat = m.loop.LastBeat()
		if m.lastBeat.Beat {
			m.beatFlash = beatFlashTicks
		} else if m.beatFlash > 0 {
			m.beatFlash--
		}
		return m, pollTick()

	case tea.KeyMsg:
		if key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))) {
			return m, tea.Quit
		}
		if mode, ok := modeForKey(msg.String()); ok {
			m.loop.SetMode(mode)
			if m.observer != nil {
				m.observer.SetModeName(mode.String())
			}
		}
	}
	return m, nil
}

// modeForKey maps the number keys 1-5 onto the render modes in display
// order.
func modeForKey(k string) (render.Mode, bool) {
	modes := render.Modes()
	if len(k) != 1 || k[0] < '1' || k[0] > byte('0'+len(modes)) {
		return 0, false
	}
	return modes[k[0]-'1'], true
}

// View renders the monitor.
func (m MonitorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Visualizer Monitor"))
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Mode:    "))
	for i, mode := range render.Modes() {
		label := fmt.Sprintf("[%d] %s", i+1, mode)
		if mode == m.loop.Mode() {
			b.WriteString(highlightStyle.Render(label))
		} else {
			b.WriteString(dimStyle.Render(label))
		}
		b.WriteString("  ")
	}
	b.WriteString("\n")

	b.WriteString(infoStyle.Render("Bass:    "))
	b.WriteString(bassBar(m.lastBeat.BassEnergy, 30))
	b.WriteString(fmt.Sprintf(" %.2f", m.lastBeat.BassEnergy))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render("Beat:    "))
	if m.beatFlash > 0 {
		b.WriteString(beatStyle.Render("● BEAT"))
	} else {
		b.WriteString(dimStyle.Render("○"))
	}
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("Stream:  %s", m.streamAddr)))
	if m.clients != nil {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  (%d clients)", m.clients())))
	}
	b.WriteString("\n\n")

	b.WriteString(dimStyle.Render("1-5: Switch mode • q: Quit"))
	b.WriteString("\n")

	return b.String()
}

// bassBar renders a fixed-width level bar for a value in [0, 1].
func bassBar(level float64, width int) string {
	if level < 0 {
		level = 0
	} else if level > 1 {
		level = 1
	}
	filled := int(level * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return highlightStyle.Render(bar)
}
