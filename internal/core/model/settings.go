package model

// Opacity bounds accepted for the break overlay.
const (
	MinOverlayOpacity = 0.7
	MaxOverlayOpacity = 0.95
)

// Settings defines editable user preferences. Timer state is never part of it.
type Settings struct {
	DebugMode            bool
	NotificationsEnabled bool
	IdleResetEnabled     bool
	LaunchAtLogin        bool

	OverlayOpacity float64
	Fullscreen     bool
}

// DefaultSettings returns default settings for RestCycle.
func DefaultSettings() Settings {
	return Settings{
		DebugMode:            false,
		NotificationsEnabled: true,
		IdleResetEnabled:     true,
		LaunchAtLogin:        false,
		OverlayOpacity:       0.85,
		Fullscreen:           true,
	}
}

// ClampOpacity keeps an opacity inside the accepted range.
func ClampOpacity(opacity float64) float64 {
	if opacity < MinOverlayOpacity {
		return MinOverlayOpacity
	}
	if opacity > MaxOverlayOpacity {
		return MaxOverlayOpacity
	}
	return opacity
}

// OverlayAlpha converts the overlay opacity into an 8-bit alpha value.
func (settings Settings) OverlayAlpha() uint8 {
	opacity := settings.OverlayOpacity
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return uint8(opacity * 255)
}
