package clock

import (
	"sync"
	"time"
)

// Fake is a manually advanced Clock. Callbacks run on the goroutine calling Advance.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending []*fakeTimer
}

type fakeTimer struct {
	clock *Fake
	when  time.Time
	seq   uint64
	fn    func()
	done  bool
}

// NewFake creates a Fake clock positioned at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the current fake time.
func (fake *Fake) Now() time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.now
}

// AfterFunc schedules f to run once the clock has been advanced by d.
func (fake *Fake) AfterFunc(d time.Duration, f func()) Timer {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.seq++
	timer := &fakeTimer{
		clock: fake,
		when:  fake.now.Add(d),
		seq:   fake.seq,
		fn:    f,
	}
	fake.pending = append(fake.pending, timer)
	return timer
}

// Advance moves the clock forward by d, firing every callback that falls due
// in deadline order. Callbacks scheduled while advancing fire too if they are
// due before the target time.
func (fake *Fake) Advance(d time.Duration) {
	fake.mu.Lock()
	target := fake.now.Add(d)
	fake.mu.Unlock()

	for {
		fake.mu.Lock()
		next := fake.popDueLocked(target)
		if next == nil {
			fake.now = target
			fake.mu.Unlock()
			return
		}
		if next.when.After(fake.now) {
			fake.now = next.when
		}
		fake.mu.Unlock()

		next.fn()
	}
}

// Pending reports how many callbacks are scheduled and not yet fired or stopped.
func (fake *Fake) Pending() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return len(fake.pending)
}

func (fake *Fake) popDueLocked(target time.Time) *fakeTimer {
	index := -1
	for i, timer := range fake.pending {
		if timer.when.After(target) {
			continue
		}
		if index < 0 || timer.when.Before(fake.pending[index].when) ||
			(timer.when.Equal(fake.pending[index].when) && timer.seq < fake.pending[index].seq) {
			index = i
		}
	}
	if index < 0 {
		return nil
	}
	timer := fake.pending[index]
	fake.pending = append(fake.pending[:index], fake.pending[index+1:]...)
	timer.done = true
	return timer
}

func (timer *fakeTimer) Stop() bool {
	fake := timer.clock
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if timer.done {
		return false
	}
	timer.done = true
	for i, pending := range fake.pending {
		if pending == timer {
			fake.pending = append(fake.pending[:i], fake.pending[i+1:]...)
			break
		}
	}
	return true
}
