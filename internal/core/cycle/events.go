package cycle

import (
	"fmt"
	"time"
)

// Phase represents the coarse state of the break cycle.
type Phase string

const (
	PhaseActive  Phase = "active"
	PhaseOnBreak Phase = "on_break"
	PhasePaused  Phase = "paused"
)

// EventType defines the type of controller event.
type EventType string

const (
	EventStateChange  EventType = "state_change"
	EventProgress     EventType = "progress"
	EventBreakWarning EventType = "break_warning"
	EventBreakStarted EventType = "break_started"
	EventBreakEnded   EventType = "break_ended"
)

// Event represents a controller update for subscribers.
type Event struct {
	Type      EventType
	Phase     Phase
	Remaining time.Duration
	At        time.Time
}

// Handler receives controller events.
type Handler func(Event)

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	Phase        Phase
	Remaining    time.Duration
	PauseUntil   time.Time
	WarningFired bool
	DebugMode    bool
}

// FormatRemaining renders a duration as zero-padded mm:ss.
func FormatRemaining(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int(remaining / time.Second)
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
