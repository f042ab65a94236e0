package tray

import (
	"fmt"
	"math"
	"sync"

	"restcycle/internal/core/cycle"

	"fyne.io/fyne/v2"
	"fyne.io/systray"
)

// Controller is the part of the break cycle the tray drives.
type Controller interface {
	Pause()
	PauseForOneHour()
	ResumeFromPause()
	ResetTimer()
	SetDebugMode(enabled bool)
	Snapshot() cycle.Snapshot
}

// Host owns the system tray. desktop.App satisfies it.
type Host interface {
	SetSystemTrayMenu(menu *fyne.Menu)
	SetSystemTrayIcon(icon fyne.Resource)
}

// TitleSetter shows text next to the tray icon.
type TitleSetter interface {
	SetTitle(title string)
	SetTooltip(tooltip string)
}

// SystrayTitle writes the menu-bar title through the native tray.
type SystrayTitle struct{}

func (SystrayTitle) SetTitle(title string)     { systray.SetTitle(title) }
func (SystrayTitle) SetTooltip(tooltip string) { systray.SetTooltip(tooltip) }

// Icons per phase.
type Icons struct {
	Active fyne.Resource
	Paused fyne.Resource
	Break  fyne.Resource
}

// Callbacks defines tray actions the application owns.
type Callbacks struct {
	OnPreferences func()
	OnQuit        func()
	// OnDebugMode receives the debug menu toggle. Without it the tray
	// switches the controller directly.
	OnDebugMode func(enabled bool)
}

// Manager handles system tray state.
type Manager struct {
	host       Host
	title      TitleSetter
	controller Controller
	icons      Icons
	callbacks  Callbacks
	appName    string

	mu         sync.Mutex
	statusItem *fyne.MenuItem
	toggleItem *fyne.MenuItem
	resetItem  *fyne.MenuItem
	hourItem   *fyne.MenuItem
	debugItem  *fyne.MenuItem
	lastMenu   menuState
	lastIcon   fyne.Resource
}

type menuState struct {
	toggle     string
	paused     bool
	hourPaused bool
	onBreak    bool
	debug      bool
	status     string
}

// New creates a tray manager and installs its menu.
func New(host Host, title TitleSetter, controller Controller, appName string, icons Icons, callbacks Callbacks) *Manager {
	manager := &Manager{
		host:       host,
		title:      title,
		controller: controller,
		icons:      icons,
		callbacks:  callbacks,
		appName:    appName,
	}

	manager.statusItem = fyne.NewMenuItem("Starting...", nil)
	manager.statusItem.Disabled = true
	manager.toggleItem = fyne.NewMenuItem("Pause", manager.togglePause)
	manager.resetItem = fyne.NewMenuItem("Reset timer", controller.ResetTimer)
	manager.hourItem = fyne.NewMenuItem("Pause for an hour", manager.toggleHourPause)
	manager.debugItem = fyne.NewMenuItem("Debug mode", manager.toggleDebug)

	manager.Update(controller.Snapshot())
	return manager
}

// AttachTitle starts mirroring the countdown into title. The native tray
// must be running, so this is called once the application has started.
func (manager *Manager) AttachTitle(title TitleSetter) {
	manager.mu.Lock()
	manager.title = title
	manager.mu.Unlock()
	manager.Update(manager.controller.Snapshot())
}

// HandleEvent refreshes the tray for a controller event.
func (manager *Manager) HandleEvent(cycle.Event) {
	manager.Update(manager.controller.Snapshot())
}

// Update renders a snapshot. The menu is rebuilt only when its content changes.
func (manager *Manager) Update(snapshot cycle.Snapshot) {
	state := describe(snapshot)
	icon := manager.iconFor(snapshot.Phase)

	manager.mu.Lock()
	title := manager.title
	menuChanged := state != manager.lastMenu
	iconChanged := icon != manager.lastIcon
	manager.lastMenu = state
	manager.lastIcon = icon
	if menuChanged {
		manager.applyLocked(state)
	}
	manager.mu.Unlock()

	if title != nil {
		title.SetTitle(TitleFor(snapshot))
		title.SetTooltip(fmt.Sprintf("%s: %s", manager.appName, state.status))
	}
	if iconChanged && icon != nil && manager.host != nil {
		manager.host.SetSystemTrayIcon(icon)
	}
	if menuChanged && manager.host != nil {
		manager.host.SetSystemTrayMenu(manager.menu())
	}
}

func (manager *Manager) applyLocked(state menuState) {
	manager.statusItem.Label = state.status
	manager.toggleItem.Label = state.toggle
	manager.toggleItem.Disabled = state.hourPaused
	manager.resetItem.Disabled = state.onBreak
	if state.hourPaused {
		manager.hourItem.Label = "Resume"
	} else {
		manager.hourItem.Label = "Pause for an hour"
	}
	manager.debugItem.Checked = state.debug
}

func (manager *Manager) menu() *fyne.Menu {
	preferences := fyne.NewMenuItem("Preferences...", func() {
		if manager.callbacks.OnPreferences != nil {
			manager.callbacks.OnPreferences()
		}
	})
	quit := fyne.NewMenuItem("Quit", func() {
		if manager.callbacks.OnQuit != nil {
			manager.callbacks.OnQuit()
		}
	})
	quit.IsQuit = true

	return fyne.NewMenu(manager.appName,
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.toggleItem,
		manager.resetItem,
		manager.hourItem,
		manager.debugItem,
		fyne.NewMenuItemSeparator(),
		preferences,
		quit,
	)
}

func (manager *Manager) togglePause() {
	if manager.controller.Snapshot().Phase == cycle.PhasePaused {
		manager.controller.ResumeFromPause()
		return
	}
	manager.controller.Pause()
}

func (manager *Manager) toggleHourPause() {
	snapshot := manager.controller.Snapshot()
	if !snapshot.PauseUntil.IsZero() && snapshot.Phase == cycle.PhasePaused {
		manager.controller.ResumeFromPause()
		return
	}
	manager.controller.PauseForOneHour()
}

func (manager *Manager) toggleDebug() {
	enabled := !manager.controller.Snapshot().DebugMode
	if manager.callbacks.OnDebugMode != nil {
		manager.callbacks.OnDebugMode(enabled)
		return
	}
	manager.controller.SetDebugMode(enabled)
}

func (manager *Manager) iconFor(phase cycle.Phase) fyne.Resource {
	switch phase {
	case cycle.PhaseOnBreak:
		return manager.icons.Break
	case cycle.PhasePaused:
		return manager.icons.Paused
	default:
		return manager.icons.Active
	}
}

func describe(snapshot cycle.Snapshot) menuState {
	state := menuState{
		toggle:     "Pause",
		paused:     snapshot.Phase == cycle.PhasePaused,
		hourPaused: snapshot.Phase == cycle.PhasePaused && !snapshot.PauseUntil.IsZero(),
		onBreak:    snapshot.Phase == cycle.PhaseOnBreak,
		debug:      snapshot.DebugMode,
	}
	if state.paused {
		state.toggle = "Start"
	}

	switch {
	case state.hourPaused:
		state.status = "Paused until " + snapshot.PauseUntil.Format("15:04")
	case state.paused:
		state.status = "Paused"
	case state.onBreak:
		state.status = "On break"
	default:
		// Minute resolution keeps the menu from being rebuilt every second.
		minutes := int(math.Ceil(snapshot.Remaining.Minutes()))
		state.status = fmt.Sprintf("Next break in %d min", minutes)
	}
	return state
}

// TitleFor returns the short menu-bar text for a snapshot.
func TitleFor(snapshot cycle.Snapshot) string {
	switch snapshot.Phase {
	case cycle.PhaseOnBreak:
		return "break"
	case cycle.PhasePaused:
		return ""
	default:
		return cycle.FormatRemaining(snapshot.Remaining)
	}
}
