// Package notify turns break warnings into desktop notifications.
package notify

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"restcycle/internal/core/cycle"

	"fyne.io/fyne/v2"
)

// Sender delivers a notification to the desktop. fyne.App satisfies it.
type Sender interface {
	SendNotification(notification *fyne.Notification)
}

// Notifier sends one notification per warning while enabled.
type Notifier struct {
	sender Sender
	title  string
	logger *slog.Logger

	mu      sync.Mutex
	enabled bool
}

// New creates a notifier. A nil sender drops every notification.
func New(sender Sender, title string, enabled bool, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{sender: sender, title: title, enabled: enabled, logger: logger}
}

// SetEnabled toggles delivery.
func (notifier *Notifier) SetEnabled(enabled bool) {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.enabled = enabled
}

// Enabled reports whether notifications are delivered.
func (notifier *Notifier) Enabled() bool {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	return notifier.enabled
}

// HandleEvent reacts to controller events.
func (notifier *Notifier) HandleEvent(event cycle.Event) {
	if event.Type != cycle.EventBreakWarning {
		return
	}
	if !notifier.Enabled() || notifier.sender == nil {
		notifier.logger.Debug("break warning not delivered", "enabled", notifier.Enabled())
		return
	}
	notifier.sender.SendNotification(fyne.NewNotification(notifier.title, WarningText(event)))
}

// WarningText describes an upcoming break.
func WarningText(event cycle.Event) string {
	seconds := int(event.Remaining.Round(time.Second).Seconds())
	if seconds < 1 {
		return "Break starting now"
	}
	return fmt.Sprintf("Break in %d seconds. Get ready to look away from the screen.", seconds)
}
