package platform

import "restcycle/internal/core/idlewatch"

// NewIdleProvider returns the idle checker for the current platform.
func NewIdleProvider() idlewatch.IdleChecker {
	return newIdleProvider()
}
