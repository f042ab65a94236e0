package platform

import (
	"time"

	"restcycle/internal/core/idlewatch"
)

type unsupportedIdleProvider struct{}

func newIdleProvider() idlewatch.IdleChecker {
	return unsupportedIdleProvider{}
}

func (unsupportedIdleProvider) IdleDuration() (time.Duration, error) {
	return 0, idlewatch.ErrIdleUnsupported
}
