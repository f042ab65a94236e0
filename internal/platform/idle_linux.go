package platform

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"restcycle/internal/core/idlewatch"
)

const xprintidleTimeout = 2 * time.Second

type xprintidleProvider struct {
	path string
}

type unsupportedIdleProvider struct{}

func newIdleProvider() idlewatch.IdleChecker {
	// xprintidle reads the X screensaver extension; a pure Wayland session
	// reports nonsense through XWayland.
	if strings.EqualFold(os.Getenv("XDG_SESSION_TYPE"), "wayland") {
		return unsupportedIdleProvider{}
	}
	path, err := exec.LookPath("xprintidle")
	if err != nil {
		return unsupportedIdleProvider{}
	}
	return &xprintidleProvider{path: path}
}

func (provider *xprintidleProvider) IdleDuration() (time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), xprintidleTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, provider.path).Output()
	if err != nil {
		return 0, fmt.Errorf("xprintidle: %w", err)
	}
	return parseIdleMillis(string(output))
}

func (unsupportedIdleProvider) IdleDuration() (time.Duration, error) {
	return 0, idlewatch.ErrIdleUnsupported
}

func parseIdleMillis(output string) (time.Duration, error) {
	idleMillis, err := strconv.ParseInt(strings.TrimSpace(output), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse idle milliseconds: %w", err)
	}
	if idleMillis < 0 {
		idleMillis = 0
	}
	return time.Duration(idleMillis) * time.Millisecond, nil
}
