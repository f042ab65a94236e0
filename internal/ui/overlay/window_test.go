package overlay

import (
	"sync/atomic"
	"testing"
	"time"

	"restcycle/internal/core/cycle"
	"restcycle/internal/core/model"
	"restcycle/internal/ui/countdown"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOverlay(t *testing.T) (*Window, *atomic.Int32) {
	t.Helper()
	app := test.NewTempApp(t)
	engine := countdown.New(countdown.Config{Interval: time.Hour})
	t.Cleanup(engine.Stop)

	overlay := New(app, Config{Opacity: 216}, engine, nil)
	var completions atomic.Int32
	overlay.SetOnComplete(func() { completions.Add(1) })
	return overlay, &completions
}

func TestSkipCompletesBreakOnce(t *testing.T) {
	overlay, completions := newTestOverlay(t)

	overlay.HandleEvent(cycle.Event{Type: cycle.EventBreakStarted, Phase: cycle.PhaseOnBreak})
	require.True(t, overlay.Visible())
	assert.Equal(t, "00:20", overlay.timerLabel.Text)

	overlay.Skip()
	overlay.Skip()

	require.Eventually(t, func() bool { return !overlay.Visible() }, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), completions.Load())
}

func TestStateChangeAwayFromBreakDismissesSilently(t *testing.T) {
	overlay, completions := newTestOverlay(t)

	overlay.ShowBreak(20 * time.Second)
	overlay.HandleEvent(cycle.Event{Type: cycle.EventStateChange, Phase: cycle.PhaseActive})

	assert.False(t, overlay.Visible())
	overlay.Skip()
	assert.Equal(t, int32(0), completions.Load())
}

func TestUpdateConfigKeepsDefaultMessage(t *testing.T) {
	overlay, _ := newTestOverlay(t)

	overlay.UpdateConfig(Config{Opacity: 242})
	assert.Equal(t, DefaultMessage, overlay.message.Text)
	assert.Equal(t, model.BreakDuration, overlay.config.BreakDuration)

	overlay.UpdateConfig(Config{Opacity: 242, Message: "Blink"})
	assert.Equal(t, "Blink", overlay.message.Text)
}

func TestElapsedFraction(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		total     time.Duration
		want      float64
	}{
		{"start", 20 * time.Second, 20 * time.Second, 0},
		{"half", 10 * time.Second, 20 * time.Second, 0.5},
		{"done", 0, 20 * time.Second, 1},
		{"negative remaining", -time.Second, 20 * time.Second, 1},
		{"zero total", 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, elapsedFraction(tt.remaining, tt.total), 1e-9)
		})
	}
}
