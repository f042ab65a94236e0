package cycle

import (
	"log/slog"
	"sync"
	"time"

	"restcycle/internal/core/clock"
	"restcycle/internal/core/model"
)

// Options contains runtime dependencies for the Controller.
type Options struct {
	Clock     clock.Clock
	Logger    *slog.Logger
	DebugMode bool
}

// Controller is the break-cycle state machine. A single mutex guards all of
// its state; subscriber handlers run after the mutex is released.
type Controller struct {
	mu     sync.Mutex
	config model.CycleConfig
	clock  clock.Clock
	logger *slog.Logger

	phase        Phase
	remaining    time.Duration
	pauseUntil   time.Time
	warningFired bool
	debugMode    bool

	// At most one live tick handle. Every arm or stop bumps tickerGen so
	// callbacks from a replaced handle are ignored.
	ticker    clock.Timer
	tickerGen uint64
	expiry    clock.Timer
	expiryGen uint64

	subscribers []*Subscription
	nextSubID   uint64
	pending     []Event
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	controller *Controller
	id         uint64
	handler    Handler
	once       sync.Once
}

// New creates a Controller in the Active phase with a full work interval.
// The ticker is not armed until Start is called.
func New(config model.CycleConfig, options Options) *Controller {
	if options.Clock == nil {
		options.Clock = clock.System
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	controller := &Controller{
		config:    config.Normalize(),
		clock:     options.Clock,
		logger:    options.Logger,
		phase:     PhaseActive,
		debugMode: options.DebugMode,
	}
	controller.remaining = controller.workDurationLocked()
	return controller
}

// Subscribe registers a handler for every subsequent event.
func (controller *Controller) Subscribe(handler Handler) *Subscription {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.nextSubID++
	subscription := &Subscription{
		controller: controller,
		id:         controller.nextSubID,
		handler:    handler,
	}
	controller.subscribers = append(controller.subscribers, subscription)
	return subscription
}

// Unsubscribe detaches the handler. Safe to call more than once.
func (subscription *Subscription) Unsubscribe() {
	subscription.once.Do(func() {
		controller := subscription.controller
		controller.mu.Lock()
		defer controller.mu.Unlock()
		for i, existing := range controller.subscribers {
			if existing.id == subscription.id {
				controller.subscribers = append(controller.subscribers[:i], controller.subscribers[i+1:]...)
				return
			}
		}
	})
}

// Start resumes counting down the current work interval. A timed pause that
// has not expired takes precedence and turns the call into a no-op.
func (controller *Controller) Start() {
	controller.mu.Lock()
	if controller.startLocked() {
		controller.emitLocked(EventStateChange)
	}
	controller.unlockAndDispatch()
}

// Pause stops the countdown indefinitely without touching the remaining time.
func (controller *Controller) Pause() {
	controller.mu.Lock()
	controller.pauseLocked()
	controller.emitLocked(EventStateChange)
	controller.unlockAndDispatch()
}

// PauseForOneHour pauses the cycle and schedules an automatic resume.
func (controller *Controller) PauseForOneHour() {
	controller.mu.Lock()
	controller.pauseLocked()
	controller.pauseUntil = controller.clock.Now().Add(controller.config.TimedPause)
	controller.scheduleExpiryLocked(controller.config.TimedPause)
	controller.logger.Info("break cycle paused", "until", controller.pauseUntil)
	controller.emitLocked(EventStateChange)
	controller.unlockAndDispatch()
}

// ResumeFromPause clears any pause and starts the countdown again.
func (controller *Controller) ResumeFromPause() {
	controller.mu.Lock()
	controller.resumeLocked()
	controller.unlockAndDispatch()
}

// ResetTimer restarts the work interval from its full duration.
func (controller *Controller) ResetTimer() {
	controller.mu.Lock()
	controller.stopTickerLocked()
	controller.beginIntervalLocked()
	controller.activateLocked()
	controller.emitLocked(EventStateChange)
	controller.unlockAndDispatch()
}

// Stop tears the cycle down: the ticker and any timed pause are cancelled and
// the remaining time returns to a full interval.
func (controller *Controller) Stop() {
	controller.mu.Lock()
	controller.stopTickerLocked()
	controller.cancelExpiryLocked()
	controller.phase = PhasePaused
	controller.beginIntervalLocked()
	controller.emitLocked(EventStateChange)
	controller.unlockAndDispatch()
}

// BreakCompleted is called by the presenter once the break countdown ends or
// the user dismisses it.
func (controller *Controller) BreakCompleted() {
	controller.mu.Lock()
	controller.completeBreakLocked()
	controller.unlockAndDispatch()
}

// CompleteBreak is BreakCompleted for presenters that run their own
// countdown: it only acts while the cycle is still OnBreak and reports
// whether it did. A countdown that elapses after a pause or stop is dropped.
func (controller *Controller) CompleteBreak() bool {
	controller.mu.Lock()
	if controller.phase != PhaseOnBreak {
		controller.logger.Debug("break completion ignored", "phase", controller.phase)
		controller.mu.Unlock()
		return false
	}
	controller.completeBreakLocked()
	controller.unlockAndDispatch()
	return true
}

// SetDebugMode switches between the production and debug work durations.
func (controller *Controller) SetDebugMode(enabled bool) {
	controller.mu.Lock()
	if controller.debugMode == enabled {
		controller.mu.Unlock()
		return
	}
	controller.debugMode = enabled
	controller.stopTickerLocked()
	controller.beginIntervalLocked()
	controller.activateLocked()
	controller.logger.Info("break cycle debug mode changed", "enabled", enabled, "work", controller.remaining)
	controller.emitLocked(EventStateChange)
	controller.unlockAndDispatch()
}

// Snapshot returns a copy of the current state.
func (controller *Controller) Snapshot() Snapshot {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return Snapshot{
		Phase:        controller.phase,
		Remaining:    controller.remaining,
		PauseUntil:   controller.pauseUntil,
		WarningFired: controller.warningFired,
		DebugMode:    controller.debugMode,
	}
}

// Phase returns the current phase.
func (controller *Controller) Phase() Phase {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.phase
}

// RemainingFormatted returns the remaining work time as mm:ss.
func (controller *Controller) RemainingFormatted() string {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return FormatRemaining(controller.remaining)
}

// IsPausedForHour reports whether a timed pause is set and still in the future.
func (controller *Controller) IsPausedForHour() bool {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.timedPauseActiveLocked(controller.clock.Now())
}

// DebugMode reports whether the debug work duration is selected.
func (controller *Controller) DebugMode() bool {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.debugMode
}

// WorkDuration returns the work interval for the current mode.
func (controller *Controller) WorkDuration() time.Duration {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.workDurationLocked()
}

// BreakDuration returns the configured break length.
func (controller *Controller) BreakDuration() time.Duration {
	return controller.config.BreakDuration
}

func (controller *Controller) startLocked() bool {
	now := controller.clock.Now()
	if controller.timedPauseActiveLocked(now) {
		controller.logger.Debug("start ignored, timed pause active", "until", controller.pauseUntil)
		return false
	}
	controller.cancelExpiryLocked()
	if controller.remaining <= 0 {
		controller.beginIntervalLocked()
	}
	controller.phase = PhaseActive
	controller.armTickerLocked()
	return true
}

func (controller *Controller) pauseLocked() {
	controller.stopTickerLocked()
	controller.cancelExpiryLocked()
	controller.phase = PhasePaused
	controller.warningFired = false
}

func (controller *Controller) completeBreakLocked() {
	controller.stopTickerLocked()
	controller.beginIntervalLocked()
	if !controller.timedPauseActiveLocked(controller.clock.Now()) {
		controller.phase = PhaseActive
	}
	controller.emitLocked(EventBreakEnded)
	controller.activateLocked()
	controller.emitLocked(EventStateChange)
}

func (controller *Controller) resumeLocked() {
	controller.cancelExpiryLocked()
	controller.startLocked()
	controller.emitLocked(EventStateChange)
}

// activateLocked moves to Active and arms the ticker unless a timed pause
// holds the cycle, in which case the phase stays Paused.
func (controller *Controller) activateLocked() {
	if controller.timedPauseActiveLocked(controller.clock.Now()) {
		controller.phase = PhasePaused
		return
	}
	controller.cancelExpiryLocked()
	controller.phase = PhaseActive
	controller.armTickerLocked()
}

func (controller *Controller) beginIntervalLocked() {
	controller.remaining = controller.workDurationLocked()
	controller.warningFired = false
}

func (controller *Controller) armTickerLocked() {
	controller.stopTickerLocked()
	controller.scheduleTickLocked(controller.tickerGen)
}

func (controller *Controller) scheduleTickLocked(gen uint64) {
	controller.ticker = controller.clock.AfterFunc(controller.config.TickInterval, func() {
		controller.onTick(gen)
	})
}

func (controller *Controller) stopTickerLocked() {
	if controller.ticker != nil {
		controller.ticker.Stop()
		controller.ticker = nil
	}
	controller.tickerGen++
}

func (controller *Controller) scheduleExpiryLocked(delay time.Duration) {
	if controller.expiry != nil {
		controller.expiry.Stop()
	}
	controller.expiryGen++
	gen := controller.expiryGen
	controller.expiry = controller.clock.AfterFunc(delay, func() {
		controller.onPauseExpiry(gen)
	})
}

func (controller *Controller) cancelExpiryLocked() {
	if controller.expiry != nil {
		controller.expiry.Stop()
		controller.expiry = nil
	}
	controller.expiryGen++
	controller.pauseUntil = time.Time{}
}

func (controller *Controller) onTick(gen uint64) {
	controller.mu.Lock()
	if gen != controller.tickerGen {
		controller.mu.Unlock()
		return
	}
	controller.ticker = nil
	controller.tickLocked(controller.clock.Now())
	if gen == controller.tickerGen && controller.phase == PhaseActive {
		controller.scheduleTickLocked(gen)
	}
	controller.unlockAndDispatch()
}

func (controller *Controller) tickLocked(now time.Time) {
	if !controller.pauseUntil.IsZero() && !now.Before(controller.pauseUntil) {
		controller.logger.Info("timed pause expired, resuming")
		controller.resumeLocked()
		return
	}
	if controller.phase != PhaseActive {
		return
	}

	previous := controller.remaining
	controller.remaining -= controller.config.TickInterval
	if controller.remaining < 0 {
		controller.remaining = 0
	}
	controller.emitLocked(EventProgress)

	// warningFired is cleared whenever the cycle leaves Active, so the lead
	// window is entered by crossing, not by being inside it after a resume.
	lead := controller.config.WarningLead
	if !controller.warningFired && controller.warningsEnabledLocked() &&
		previous > lead && controller.remaining > 0 && controller.remaining <= lead {
		controller.warningFired = true
		controller.logger.Debug("break warning", "remaining", controller.remaining)
		controller.emitLocked(EventBreakWarning)
	}

	if controller.remaining <= 0 {
		controller.stopTickerLocked()
		controller.phase = PhaseOnBreak
		controller.warningFired = false
		controller.logger.Info("break started", "duration", controller.config.BreakDuration)
		controller.emitLocked(EventBreakStarted)
	}
}

func (controller *Controller) onPauseExpiry(gen uint64) {
	controller.mu.Lock()
	if gen != controller.expiryGen || controller.pauseUntil.IsZero() {
		controller.mu.Unlock()
		return
	}
	controller.expiry = nil
	now := controller.clock.Now()
	if now.Before(controller.pauseUntil) {
		controller.scheduleExpiryLocked(controller.pauseUntil.Sub(now))
		controller.mu.Unlock()
		return
	}
	controller.logger.Info("timed pause expired, resuming")
	controller.resumeLocked()
	controller.unlockAndDispatch()
}

func (controller *Controller) timedPauseActiveLocked(now time.Time) bool {
	return !controller.pauseUntil.IsZero() && now.Before(controller.pauseUntil)
}

func (controller *Controller) warningsEnabledLocked() bool {
	return !controller.debugMode && controller.workDurationLocked() > controller.config.WarningLead
}

func (controller *Controller) workDurationLocked() time.Duration {
	return controller.config.WorkFor(controller.debugMode)
}

func (controller *Controller) emitLocked(eventType EventType) {
	controller.pending = append(controller.pending, Event{
		Type:      eventType,
		Phase:     controller.phase,
		Remaining: controller.remaining,
		At:        controller.clock.Now(),
	})
}

// unlockAndDispatch releases the mutex and then delivers queued events in
// order, so handlers may call back into the controller.
func (controller *Controller) unlockAndDispatch() {
	events := controller.pending
	controller.pending = nil
	var handlers []Handler
	if len(events) > 0 {
		handlers = make([]Handler, 0, len(controller.subscribers))
		for _, subscription := range controller.subscribers {
			handlers = append(handlers, subscription.handler)
		}
	}
	controller.mu.Unlock()

	for _, event := range events {
		for _, handler := range handlers {
			handler(event)
		}
	}
}
