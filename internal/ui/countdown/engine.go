// Package countdown runs the presenter's own break countdown.
package countdown

import (
	"context"
	"sync"
	"time"
)

// Reason explains why a session ended.
type Reason string

const (
	ReasonElapsed   Reason = "elapsed"
	ReasonDismissed Reason = "dismissed"
)

// Config contains countdown timing values.
type Config struct {
	Interval time.Duration
}

// Session describes a single countdown.
type Session struct {
	Total  time.Duration
	OnTick func(remaining time.Duration)
	OnDone func(reason Reason)
}

// Engine runs at most one countdown session at a time.
type Engine struct {
	mu      sync.Mutex
	config  Config
	cancel  context.CancelFunc
	current uint64
	onDone  func(Reason)
}

// New creates a new countdown engine.
func New(config Config) *Engine {
	if config.Interval <= 0 {
		config.Interval = time.Second
	}
	return &Engine{config: config}
}

// Start replaces any running session. A replaced session ends silently.
// OnTick fires immediately with the full total and then once per interval;
// OnDone fires exactly once unless the session is replaced or stopped.
func (engine *Engine) Start(ctx context.Context, session Session) {
	engine.mu.Lock()
	if engine.cancel != nil {
		engine.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	engine.cancel = cancel
	engine.current++
	id := engine.current
	engine.onDone = session.OnDone
	engine.mu.Unlock()

	go engine.run(runCtx, id, session)
}

// Finish ends the running session early and reports ReasonDismissed.
// It returns false when no session is running.
func (engine *Engine) Finish() bool {
	engine.mu.Lock()
	id := engine.current
	running := engine.cancel != nil
	engine.mu.Unlock()
	if !running {
		return false
	}
	return engine.complete(id, ReasonDismissed)
}

// Stop terminates any running session without calling OnDone.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.endLocked()
}

// Active reports whether a session is running.
func (engine *Engine) Active() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.cancel != nil
}

func (engine *Engine) run(ctx context.Context, id uint64, session Session) {
	remaining := session.Total
	for remaining > 0 {
		if ctx.Err() != nil {
			return
		}
		if session.OnTick != nil {
			session.OnTick(remaining)
		}
		if !sleepWithContext(ctx, engine.config.Interval) {
			return
		}
		remaining -= engine.config.Interval
	}
	if session.OnTick != nil && ctx.Err() == nil {
		session.OnTick(0)
	}
	engine.complete(id, ReasonElapsed)
}

func (engine *Engine) complete(id uint64, reason Reason) bool {
	engine.mu.Lock()
	if id != engine.current || engine.cancel == nil {
		engine.mu.Unlock()
		return false
	}
	onDone := engine.onDone
	engine.endLocked()
	engine.mu.Unlock()

	if onDone != nil {
		onDone(reason)
	}
	return true
}

func (engine *Engine) endLocked() {
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
	engine.onDone = nil
	engine.current++
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
