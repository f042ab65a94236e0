// Package session keeps the saved preferences, the running break cycle and
// every view of them in agreement.
package session

import (
	"log/slog"
	"sync"

	"restcycle/internal/core/model"
)

// Store persists preferences.
type Store interface {
	Save(settings model.Settings) error
	Path() string
}

// DebugSwitch is the part of the controller whose state mirrors a preference.
type DebugSwitch interface {
	SetDebugMode(enabled bool)
}

// Options configures a Session.
type Options struct {
	Logger *slog.Logger
	// DebugOverride forces debug mode for this run. It is never saved unless
	// the user changes debug mode explicitly.
	DebugOverride *bool
	// OnApply runs after every change with the values in force before and after.
	OnApply func(previous, current model.Settings)
}

// Session is the single owner of the preferences for a running process.
// Every writer (preferences window, tray menu) goes through it.
type Session struct {
	mu        sync.Mutex
	store     Store
	debug     DebugSwitch
	saved     model.Settings
	override  *bool
	onApply   func(previous, current model.Settings)
	listeners []func(model.Settings)
	logger    *slog.Logger
}

// New creates a session around the settings loaded from store. The caller
// is expected to have built the controller with Effective().DebugMode.
func New(store Store, debug DebugSwitch, saved model.Settings, options Options) *Session {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var override *bool
	if options.DebugOverride != nil {
		value := *options.DebugOverride
		override = &value
	}
	return &Session{
		store:    store,
		debug:    debug,
		saved:    saved,
		override: override,
		onApply:  options.OnApply,
		logger:   logger,
	}
}

// Effective returns the settings in force for this run.
func Effective(saved model.Settings, override *bool) model.Settings {
	if override != nil {
		saved.DebugMode = *override
	}
	return saved
}

// Effective returns the settings in force, including any run-only override.
func (session *Session) Effective() model.Settings {
	session.mu.Lock()
	defer session.mu.Unlock()
	return Effective(session.saved, session.override)
}

// Saved returns the settings as they are stored on disk.
func (session *Session) Saved() model.Settings {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.saved
}

// OnChange registers a listener that receives the effective settings after
// every change. Listeners run on the caller's goroutine.
func (session *Session) OnChange(listener func(model.Settings)) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.listeners = append(session.listeners, listener)
}

// Apply stores values edited in the preferences window. A debug value equal
// to the run-only override counts as untouched and is not written back.
func (session *Session) Apply(updated model.Settings) {
	session.mu.Lock()
	previous := Effective(session.saved, session.override)
	if session.override != nil {
		if updated.DebugMode == *session.override {
			updated.DebugMode = session.saved.DebugMode
		} else {
			session.override = nil
		}
	}
	session.saved = updated
	current := Effective(session.saved, session.override)
	session.mu.Unlock()

	session.commit(previous, current, updated)
}

// SetDebugMode changes debug mode from outside the preferences window and
// saves it like any other preference.
func (session *Session) SetDebugMode(enabled bool) {
	session.mu.Lock()
	previous := Effective(session.saved, session.override)
	session.override = nil
	session.saved.DebugMode = enabled
	saved := session.saved
	session.mu.Unlock()

	session.commit(previous, saved, saved)
}

func (session *Session) commit(previous, current, saved model.Settings) {
	if session.debug != nil {
		session.debug.SetDebugMode(current.DebugMode)
	}
	if session.onApply != nil {
		session.onApply(previous, current)
	}
	if err := session.store.Save(saved); err != nil {
		session.logger.Error("save settings", "path", session.store.Path(), "error", err)
	}

	session.mu.Lock()
	listeners := append(([]func(model.Settings))(nil), session.listeners...)
	session.mu.Unlock()
	for _, listener := range listeners {
		listener(current)
	}
}
