// Package clock abstracts time so timer-driven code can be tested without sleeping.
package clock

import "time"

// Timer represents a scheduled callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock provides time-related operations.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// System is the Clock backed by package time.
var System Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
