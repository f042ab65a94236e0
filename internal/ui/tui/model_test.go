package tui

import (
	"bytes"
	"testing"
	"time"

	"restcycle/internal/core/cycle"
	"restcycle/internal/core/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	snapshot cycle.Snapshot
	calls    []string
}

func (c *fakeController) record(name string) { c.calls = append(c.calls, name) }
func (c *fakeController) Start() { c.record("start") }
func (c *fakeController) Pause() { c.record("pause") }
func (c *fakeController) PauseForOneHour() { c.record("pause-hour") }
func (c *fakeController) ResumeFromPause() { c.record("resume") }
func (c *fakeController) ResetTimer() { c.record("reset") }
func (c *fakeController) BreakCompleted() { c.record("break-completed") }
func (c *fakeController) Snapshot() cycle.Snapshot { return c.snapshot }
func (c *fakeController) WorkDuration() time.Duration { return 20 * time.Minute }
func (c *fakeController) BreakDuration() time.Duration { return 3 * time.Second }
func (c *fakeController) SetDebugMode(enabled bool) {
	c.record("debug")
	c.snapshot.DebugMode = enabled
}

func newTestModel() (Model, *fakeController) {
	controller := &fakeController{snapshot: cycle.Snapshot{Phase: cycle.PhaseActive, Remaining: 20 * time.Minute}}
	return NewModel(controller), controller
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// update applies msg and runs the returned command, if any.
func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(Model)
	require.True(t, ok)
	if cmd == nil {
		return updated, nil
	}
	return updated, cmd()
}

func TestInitStartsController(t *testing.T) {
	m, controller := newTestModel()
	cmd := m.Init()
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"start"}, controller.calls)
}

func TestKeysDriveController(t *testing.T) {
	tests := []struct {
		key  string
		call string
	}{
		{"s", "start"},
		{"p", "pause"},
		{"h", "pause-hour"},
		{"u", "resume"},
		{"r", "reset"},
		{"d", "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m, controller := newTestModel()
			update(t, m, keyMsg(tt.key))
			assert.Equal(t, []string{tt.call}, controller.calls)
		})
	}
}

func TestDebugKeyToggles(t *testing.T) {
	m, controller := newTestModel()
	m, _ = update(t, m, keyMsg("d"))
	assert.True(t, controller.snapshot.DebugMode)

	m, _ = update(t, m, EventMsg{Type: cycle.EventStateChange, Phase: cycle.PhaseActive})
	assert.Contains(t, m.View(), "[debug]")

	update(t, m, keyMsg("d"))
	assert.False(t, controller.snapshot.DebugMode)
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel()
	_, msg := update(t, m, keyMsg("q"))
	assert.IsType(t, tea.QuitMsg{}, msg)
}

func TestWarningShowsBannerAndRings(t *testing.T) {
	controller := &fakeController{snapshot: cycle.Snapshot{Phase: cycle.PhaseActive, Remaining: 30 * time.Second}}
	var bell bytes.Buffer
	m := NewModel(controller, WithBell(&bell))

	m, _ = update(t, m, EventMsg{Type: cycle.EventBreakWarning, Phase: cycle.PhaseActive, Remaining: 30 * time.Second})
	assert.Equal(t, "\a", bell.String())
	assert.Contains(t, m.View(), "Break in 00:30")
}

func TestBreakCountsDownThenCompletes(t *testing.T) {
	m, controller := newTestModel()
	controller.snapshot.Phase = cycle.PhaseOnBreak

	m, _ = update(t, m, EventMsg{Type: cycle.EventBreakStarted, Phase: cycle.PhaseOnBreak})
	require.True(t, m.onBreak)
	assert.Contains(t, m.View(), "00:03")

	id := m.breakID
	m, _ = update(t, m, breakTickMsg{id: id})
	m, _ = update(t, m, breakTickMsg{id: id})
	assert.Contains(t, m.View(), "00:01")
	assert.Empty(t, controller.calls)

	m, _ = update(t, m, breakTickMsg{id: id})
	assert.False(t, m.onBreak)
	assert.Equal(t, []string{"break-completed"}, controller.calls)

	update(t, m, breakTickMsg{id: id})
	assert.Equal(t, []string{"break-completed"}, controller.calls, "stale tick is ignored")
}

func TestDismissEndsBreakOnce(t *testing.T) {
	m, controller := newTestModel()
	m, _ = update(t, m, EventMsg{Type: cycle.EventBreakStarted, Phase: cycle.PhaseOnBreak})

	m, _ = update(t, m, keyMsg("p"))
	assert.Empty(t, controller.calls, "cycle keys are ignored during a break")

	m, _ = update(t, m, keyMsg("esc"))
	m, _ = update(t, m, keyMsg("enter"))
	assert.Equal(t, []string{"break-completed"}, controller.calls)
	assert.False(t, m.onBreak)
}

func TestStateChangeAwayFromBreakClosesScreen(t *testing.T) {
	m, controller := newTestModel()
	m, _ = update(t, m, EventMsg{Type: cycle.EventBreakStarted, Phase: cycle.PhaseOnBreak})
	id := m.breakID

	controller.snapshot.Phase = cycle.PhasePaused
	m, _ = update(t, m, EventMsg{Type: cycle.EventStateChange, Phase: cycle.PhasePaused})
	assert.False(t, m.onBreak)
	assert.Contains(t, m.View(), "Paused")

	update(t, m, breakTickMsg{id: id})
	assert.Empty(t, controller.calls)
}

func TestWindowSizeClampsProgress(t *testing.T) {
	m, _ := newTestModel()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 10, Height: 10})
	assert.Equal(t, minProgressWidth, m.progress.Width)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 500, Height: 10})
	assert.Equal(t, maxProgressWidth, m.progress.Width)
}

func TestSubscribeForwardsEvents(t *testing.T) {
	controller := cycle.New(model.DefaultCycleConfig(), cycle.Options{})
	var received []tea.Msg
	subscription := Subscribe(controller, func(msg tea.Msg) { received = append(received, msg) })
	defer subscription.Unsubscribe()

	controller.Pause()
	require.Len(t, received, 1)
	event, ok := received[0].(EventMsg)
	require.True(t, ok)
	assert.Equal(t, cycle.PhasePaused, event.Phase)
}

func TestPhaseLabel(t *testing.T) {
	until := time.Date(2026, 1, 1, 9, 30, 0, 0, time.Local)
	assert.Equal(t, "Working", phaseLabel(cycle.Snapshot{Phase: cycle.PhaseActive}))
	assert.Equal(t, "Paused", phaseLabel(cycle.Snapshot{Phase: cycle.PhasePaused}))
	assert.Equal(t, "Paused until 09:30", phaseLabel(cycle.Snapshot{Phase: cycle.PhasePaused, PauseUntil: until}))
	assert.Equal(t, "On break", phaseLabel(cycle.Snapshot{Phase: cycle.PhaseOnBreak}))
}

func TestWorkFraction(t *testing.T) {
	assert.InDelta(t, 0.0, workFraction(20*time.Minute, 20*time.Minute), 1e-9)
	assert.InDelta(t, 0.25, workFraction(15*time.Minute, 20*time.Minute), 1e-9)
	assert.InDelta(t, 1.0, workFraction(-time.Second, 20*time.Minute), 1e-9)
	assert.InDelta(t, 1.0, workFraction(0, 0), 1e-9)
}
