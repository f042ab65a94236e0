// Package tui is a terminal front end for the break cycle.
package tui

import (
	"io"
	"time"

	"restcycle/internal/core/cycle"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	breakTickInterval = time.Second
	minProgressWidth  = 20
	maxProgressWidth  = 60
)

// Controller is the break cycle as seen by the terminal UI.
type Controller interface {
	Start()
	Pause()
	PauseForOneHour()
	ResumeFromPause()
	ResetTimer()
	SetDebugMode(enabled bool)
	BreakCompleted()
	Snapshot() cycle.Snapshot
	WorkDuration() time.Duration
	BreakDuration() time.Duration
}

// EventMsg carries a controller event into the program.
type EventMsg cycle.Event

type breakTickMsg struct {
	id int
}

// EventSource publishes controller events.
type EventSource interface {
	Subscribe(handler cycle.Handler) *cycle.Subscription
}

// Subscribe forwards controller events to send, typically tea.Program.Send.
func Subscribe(source EventSource, send func(tea.Msg)) *cycle.Subscription {
	return source.Subscribe(func(event cycle.Event) {
		send(EventMsg(event))
	})
}

// Model is the root Bubble Tea model.
type Model struct {
	controller Controller
	keys       keyMap
	help       help.Model
	progress   progress.Model
	bell       io.Writer

	snapshot cycle.Snapshot
	banner   string

	onBreak        bool
	breakID        int
	breakRemaining time.Duration
}

// Option configures a Model during construction.
type Option func(*Model)

// WithBell rings the terminal bell on break warnings by writing BEL to w.
func WithBell(w io.Writer) Option {
	return func(m *Model) { m.bell = w }
}

// NewModel creates the terminal model around a controller.
func NewModel(controller Controller, opts ...Option) Model {
	m := Model{
		controller: controller,
		keys:       defaultKeyMap(),
		help:       help.New(),
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		snapshot:   controller.Snapshot(),
	}
	m.progress.Width = maxProgressWidth / 2
	for _, o := range opts {
		o(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.call(m.controller.Start)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.progress.Width = clampWidth(msg.Width - 4)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case EventMsg:
		return m.handleEvent(cycle.Event(msg))
	case breakTickMsg:
		return m.handleBreakTick(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.onBreak {
		if key.Matches(msg, m.keys.Dismiss) {
			return m.finishBreak()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Start):
		return m, m.call(m.controller.Start)
	case key.Matches(msg, m.keys.Pause):
		return m, m.call(m.controller.Pause)
	case key.Matches(msg, m.keys.Hour):
		return m, m.call(m.controller.PauseForOneHour)
	case key.Matches(msg, m.keys.Resume):
		return m, m.call(m.controller.ResumeFromPause)
	case key.Matches(msg, m.keys.Reset):
		return m, m.call(m.controller.ResetTimer)
	case key.Matches(msg, m.keys.Debug):
		debug := !m.snapshot.DebugMode
		return m, m.call(func() { m.controller.SetDebugMode(debug) })
	}
	return m, nil
}

func (m Model) handleEvent(event cycle.Event) (tea.Model, tea.Cmd) {
	m.snapshot = m.controller.Snapshot()

	switch event.Type {
	case cycle.EventBreakWarning:
		m.banner = "Break in " + cycle.FormatRemaining(event.Remaining) + ". Get ready to look away."
		return m, m.ring()
	case cycle.EventBreakStarted:
		m.banner = ""
		m.onBreak = true
		m.breakID++
		m.breakRemaining = m.controller.BreakDuration()
		return m, breakTick(m.breakID)
	case cycle.EventStateChange:
		if event.Phase != cycle.PhaseActive {
			m.banner = ""
		}
		if event.Phase != cycle.PhaseOnBreak && m.onBreak {
			// The break ended elsewhere, for example through Stop.
			m.onBreak = false
			m.breakID++
		}
	}
	return m, nil
}

func (m Model) handleBreakTick(msg breakTickMsg) (tea.Model, tea.Cmd) {
	if !m.onBreak || msg.id != m.breakID {
		return m, nil
	}
	m.breakRemaining -= breakTickInterval
	if m.breakRemaining <= 0 {
		m.breakRemaining = 0
		return m.finishBreak()
	}
	return m, breakTick(m.breakID)
}

// finishBreak closes the break screen exactly once per break.
func (m Model) finishBreak() (tea.Model, tea.Cmd) {
	if !m.onBreak {
		return m, nil
	}
	m.onBreak = false
	m.breakID++
	return m, m.call(m.controller.BreakCompleted)
}

// call runs a controller operation off the update loop. The controller
// dispatches events synchronously and those events are sent back into the
// program, which would block if done from inside Update.
func (m Model) call(operation func()) tea.Cmd {
	return func() tea.Msg {
		operation()
		return nil
	}
}

func (m Model) ring() tea.Cmd {
	if m.bell == nil {
		return nil
	}
	bell := m.bell
	return func() tea.Msg {
		_, _ = io.WriteString(bell, "\a")
		return nil
	}
}

func breakTick(id int) tea.Cmd {
	return tea.Tick(breakTickInterval, func(time.Time) tea.Msg {
		return breakTickMsg{id: id}
	})
}

func clampWidth(width int) int {
	if width < minProgressWidth {
		return minProgressWidth
	}
	if width > maxProgressWidth {
		return maxProgressWidth
	}
	return width
}
