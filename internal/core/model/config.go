package model

import "time"

// Fixed cycle timings.
const (
	WorkDuration      = 20 * time.Minute
	DebugWorkDuration = 5 * time.Second
	BreakDuration     = 20 * time.Second
	WarningLead       = 30 * time.Second
	TimedPause        = time.Hour
	TickInterval      = time.Second
)

// CycleConfig contains runtime settings for the break-cycle state machine.
type CycleConfig struct {
	WorkDuration      time.Duration
	DebugWorkDuration time.Duration
	BreakDuration     time.Duration
	WarningLead       time.Duration
	TimedPause        time.Duration
	TickInterval      time.Duration
}

// DefaultCycleConfig returns the production cycle timings.
func DefaultCycleConfig() CycleConfig {
	return CycleConfig{
		WorkDuration:      WorkDuration,
		DebugWorkDuration: DebugWorkDuration,
		BreakDuration:     BreakDuration,
		WarningLead:       WarningLead,
		TimedPause:        TimedPause,
		TickInterval:      TickInterval,
	}
}

// Normalize fills zero fields with the defaults.
func (config CycleConfig) Normalize() CycleConfig {
	defaults := DefaultCycleConfig()
	if config.WorkDuration <= 0 {
		config.WorkDuration = defaults.WorkDuration
	}
	if config.DebugWorkDuration <= 0 {
		config.DebugWorkDuration = defaults.DebugWorkDuration
	}
	if config.BreakDuration <= 0 {
		config.BreakDuration = defaults.BreakDuration
	}
	if config.WarningLead <= 0 {
		config.WarningLead = defaults.WarningLead
	}
	if config.TimedPause <= 0 {
		config.TimedPause = defaults.TimedPause
	}
	if config.TickInterval <= 0 {
		config.TickInterval = defaults.TickInterval
	}
	return config
}

// WorkFor returns the work interval for the given mode.
func (config CycleConfig) WorkFor(debug bool) time.Duration {
	if debug {
		return config.DebugWorkDuration
	}
	return config.WorkDuration
}
