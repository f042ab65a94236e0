package preferences

import (
	"fmt"

	"restcycle/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window        fyne.Window
	settings      model.Settings
	onSave        func(model.Settings)
	debugMode     *widget.Check
	notifications *widget.Check
	idleReset     *widget.Check
	launchAtLogin *widget.Check
	opacity       *widget.Slider
	opacityLabel  *widget.Label
	fullscreen    *widget.Check
	saveButton    *widget.Button
	cancelButton  *widget.Button
}

// New creates a preferences window.
func New(app fyne.App, settings model.Settings, onSave func(model.Settings)) *Window {
	window := app.NewWindow("RestCycle Settings")

	debugMode := widget.NewCheck("Debug mode (5 second work interval)", nil)
	notifications := widget.NewCheck("Warn 30 seconds before a break", nil)
	idleReset := widget.NewCheck("Restart the work timer after 5 minutes idle", nil)
	launchAtLogin := widget.NewCheck("Launch at login", nil)
	fullscreen := widget.NewCheck("Fullscreen overlay", nil)

	opacity := widget.NewSlider(model.MinOverlayOpacity, model.MaxOverlayOpacity)
	opacity.Step = 0.01
	opacityLabel := widget.NewLabel("")
	opacity.OnChanged = func(value float64) {
		opacityLabel.SetText(opacityText(value))
	}

	form := container.NewVBox(
		widget.NewLabelWithStyle("Break cycle", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		debugMode,
		notifications,
		idleReset,
		launchAtLogin,
		widget.NewLabelWithStyle("Overlay", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, widget.NewLabel("Opacity"), opacityLabel, opacity),
		fullscreen,
	)

	saveButton := widget.NewButton("Save", nil)
	saveButton.Importance = widget.HighImportance
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(layout.NewSpacer(), cancelButton, saveButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(420, 340))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	prefs := &Window{
		window:        window,
		onSave:        onSave,
		debugMode:     debugMode,
		notifications: notifications,
		idleReset:     idleReset,
		launchAtLogin: launchAtLogin,
		opacity:       opacity,
		opacityLabel:  opacityLabel,
		fullscreen:    fullscreen,
		saveButton:    saveButton,
		cancelButton:  cancelButton,
	}
	prefs.UpdateSettings(settings)

	saveButton.OnTapped = prefs.Save
	cancelButton.OnTapped = func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	}

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// Settings returns the last saved values.
func (prefs *Window) Settings() model.Settings {
	return prefs.settings
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings model.Settings) {
	settings.OverlayOpacity = model.ClampOpacity(settings.OverlayOpacity)
	prefs.settings = settings
	prefs.debugMode.SetChecked(settings.DebugMode)
	prefs.notifications.SetChecked(settings.NotificationsEnabled)
	prefs.idleReset.SetChecked(settings.IdleResetEnabled)
	prefs.launchAtLogin.SetChecked(settings.LaunchAtLogin)
	prefs.opacity.SetValue(settings.OverlayOpacity)
	prefs.opacityLabel.SetText(opacityText(settings.OverlayOpacity))
	prefs.fullscreen.SetChecked(settings.Fullscreen)
}

// Save commits the values shown in the window, as the Save button does.
func (prefs *Window) Save() {
	settings := model.Settings{
		DebugMode:            prefs.debugMode.Checked,
		NotificationsEnabled: prefs.notifications.Checked,
		IdleResetEnabled:     prefs.idleReset.Checked,
		LaunchAtLogin:        prefs.launchAtLogin.Checked,
		OverlayOpacity:       model.ClampOpacity(prefs.opacity.Value),
		Fullscreen:           prefs.fullscreen.Checked,
	}

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func opacityText(value float64) string {
	return fmt.Sprintf("%d%%", int(value*100+0.5))
}
