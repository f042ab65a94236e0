package platform

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"restcycle/internal/core/idlewatch"
)

var (
	user32             = syscall.NewLazyDLL("user32.dll")
	kernel32           = syscall.NewLazyDLL("kernel32.dll")
	procGetLastInput   = user32.NewProc("GetLastInputInfo")
	procGetTickCount64 = kernel32.NewProc("GetTickCount64")
)
	kernel32            = syscall.NewLazyDLL("kernel32.dll")
	procGetLastInput    = user32.NewProc("GetLastInputInfo")
	procGetTickCount64  = kernel32.NewProc("GetTickCount64")
)

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

type lastInputProvider struct{}

func newIdleProvider() idlewatch.IdleChecker {
	return lastInputProvider{}
}

func (lastInputProvider) IdleDuration() (time.Duration, error) {
	info := lastInputInfo{cbSize: uint32(unsafe.Sizeof(lastInputInfo{}))}
	result, _, err := procGetLastInput.Call(uintptr(unsafe.Pointer(&info)))
	if result == 0 {
		return 0, fmt.Errorf("get last input info: %w", err)
	}

	ticks, _, err := procGetTickCount64.Call()
	if ticks == 0 {
		return 0, fmt.Errorf("get tick count: %w", err)
	}

	// dwTime wraps every 49.7 days; compare in the 32-bit domain.
	idleMillis := uint32(ticks) - info.dwTime
	return time.Duration(idleMillis) * time.Millisecond, nil
}
