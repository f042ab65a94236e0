// Package idlewatch restarts the work interval after the user has been away
// from the machine long enough to have rested already.
package idlewatch

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"restcycle/internal/core/clock"
	"restcycle/internal/core/cycle"
)

// ErrIdleUnsupported indicates idle detection is not available on this system.
var ErrIdleUnsupported = errors.New("idle detection unsupported")

// IdleChecker reports the duration of user inactivity.
type IdleChecker interface {
	IdleDuration() (time.Duration, error)
}

// Target is the part of the break cycle the watcher drives.
type Target interface {
	Phase() cycle.Phase
	ResetTimer()
}

// Config contains polling options.
type Config struct {
	Threshold time.Duration
	Interval  time.Duration
}

// DefaultConfig polls every five seconds and resets after five idle minutes.
func DefaultConfig() Config {
	return Config{
		Threshold: 5 * time.Minute,
		Interval:  5 * time.Second,
	}
}

// Options contains runtime dependencies.
type Options struct {
	Clock  clock.Clock
	Logger *slog.Logger
}

// Watcher polls an IdleChecker and resets the cycle once per idle stretch.
type Watcher struct {
	mu          sync.Mutex
	config      Config
	checker     IdleChecker
	target      Target
	clock       clock.Clock
	logger      *slog.Logger
	timer       clock.Timer
	gen         uint64
	running     bool
	unsupported bool
	idleHandled bool
}

// New creates a stopped Watcher.
func New(checker IdleChecker, target Target, config Config, options Options) *Watcher {
	defaults := DefaultConfig()
	if config.Threshold <= 0 {
		config.Threshold = defaults.Threshold
	}
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if options.Clock == nil {
		options.Clock = clock.System
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Watcher{
		config:  config,
		checker: checker,
		target:  target,
		clock:   options.Clock,
		logger:  options.Logger,
	}
}

// SetEnabled starts or stops polling.
func (watcher *Watcher) SetEnabled(enabled bool) {
	if enabled {
		watcher.Start()
		return
	}
	watcher.Stop()
}

// Start begins polling. It is a no-op when already running or when the
// platform reported idle detection as unsupported.
func (watcher *Watcher) Start() {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if watcher.running || watcher.unsupported || watcher.checker == nil {
		return
	}
	watcher.running = true
	watcher.idleHandled = false
	watcher.scheduleLocked()
}

// Stop halts polling.
func (watcher *Watcher) Stop() {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	watcher.stopLocked()
}

// Running reports whether the watcher is polling.
func (watcher *Watcher) Running() bool {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	return watcher.running
}

func (watcher *Watcher) stopLocked() {
	if watcher.timer != nil {
		watcher.timer.Stop()
		watcher.timer = nil
	}
	watcher.gen++
	watcher.running = false
}

func (watcher *Watcher) scheduleLocked() {
	gen := watcher.gen
	watcher.timer = watcher.clock.AfterFunc(watcher.config.Interval, func() {
		watcher.poll(gen)
	})
}

func (watcher *Watcher) poll(gen uint64) {
	watcher.mu.Lock()
	if gen != watcher.gen || !watcher.running {
		watcher.mu.Unlock()
		return
	}
	watcher.timer = nil
	watcher.mu.Unlock()

	reset := watcher.check()
	if reset {
		watcher.target.ResetTimer()
	}

	watcher.mu.Lock()
	if gen == watcher.gen && watcher.running {
		watcher.scheduleLocked()
	}
	watcher.mu.Unlock()
}

func (watcher *Watcher) check() bool {
	idle, err := watcher.checker.IdleDuration()
	if err != nil {
		if errors.Is(err, ErrIdleUnsupported) {
			watcher.logger.Warn("idle detection unavailable, idle reset disabled", "error", err)
			watcher.mu.Lock()
			watcher.unsupported = true
			watcher.stopLocked()
			watcher.mu.Unlock()
			return false
		}
		watcher.logger.Debug("idle check failed", "error", err)
		return false
	}

	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if idle < watcher.config.Threshold {
		watcher.idleHandled = false
		return false
	}
	if watcher.idleHandled || watcher.target.Phase() != cycle.PhaseActive {
		return false
	}
	watcher.idleHandled = true
	watcher.logger.Info("user idle, restarting work interval", "idle", idle)
	return true
}
