package overlay

import (
	"context"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"restcycle/internal/core/cycle"
	"restcycle/internal/core/model"
	"restcycle/internal/ui/countdown"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// DefaultMessage is shown while a break is running.
const DefaultMessage = "Look at something 20 feet away for 20 seconds"

// Config defines overlay visuals.
type Config struct {
	Opacity       uint8
	Fullscreen    bool
	Message       string
	BreakDuration time.Duration
}

// Window presents the break overlay and runs its countdown.
type Window struct {
	app        fyne.App
	window     fyne.Window
	config     Config
	engine     *countdown.Engine
	logger     *slog.Logger
	background *canvas.Rectangle
	titleLabel *canvas.Text
	message    *canvas.Text
	timerLabel *canvas.Text
	progress   *widget.ProgressBar
	skipButton *widget.Button

	mu         sync.Mutex
	onComplete func()
	total      time.Duration
	visible    bool
}

const (
	overlayWidthFraction  = float32(0.32)
	overlayHeightFraction = float32(0.28)
	defaultScreenWidth    = float32(1920)
	defaultScreenHeight   = float32(1080)
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates the overlay window. It starts hidden.
func New(app fyne.App, config Config, engine *countdown.Engine, logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}
	config = config.withDefaults()

	window := app.NewWindow("RestCycle")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash windows have no native frame.
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{A: config.Opacity})

	titleLabel := canvas.NewText("Time for a break", color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	titleLabel.Alignment = fyne.TextAlignCenter
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.TextSize = 28

	message := canvas.NewText(config.Message, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	message.Alignment = fyne.TextAlignCenter
	message.TextSize = 17

	timerLabel := canvas.NewText("00:00", color.NRGBA{R: 232, G: 190, B: 66, A: 255})
	timerLabel.Alignment = fyne.TextAlignCenter
	timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timerLabel.TextSize = 40

	progress := widget.NewProgressBar()
	progress.TextFormatter = func() string { return "" }

	skipButton := widget.NewButton("Skip", nil)

	column := container.NewVBox(
		titleLabel,
		message,
		timerLabel,
		progress,
		container.NewCenter(skipButton),
	)
	window.SetContent(container.NewStack(background, container.NewCenter(column)))

	overlay := &Window{
		app:        app,
		window:     window,
		config:     config,
		engine:     engine,
		logger:     logger,
		background: background,
		titleLabel: titleLabel,
		message:    message,
		timerLabel: timerLabel,
		progress:   progress,
		skipButton: skipButton,
	}
	skipButton.OnTapped = func() {
		overlay.Skip()
	}
	return overlay
}

// SetOnComplete sets the handler invoked once per break when the countdown
// elapses or the user skips.
func (overlay *Window) SetOnComplete(handler func()) {
	overlay.mu.Lock()
	defer overlay.mu.Unlock()
	overlay.onComplete = handler
}

// ShowBreak displays the overlay and starts a countdown of total.
// Calling it while a break is visible restarts the countdown.
// Must run on the UI goroutine.
func (overlay *Window) ShowBreak(total time.Duration) {
	overlay.mu.Lock()
	overlay.total = total
	overlay.visible = true
	overlay.mu.Unlock()

	overlay.setRemainingUnsafe(total)
	overlay.applyWindowMode()
	overlay.window.Show()
	overlay.window.RequestFocus()

	overlay.engine.Start(context.Background(), countdown.Session{
		Total: total,
		OnTick: func(remaining time.Duration) {
			fyne.Do(func() {
				overlay.setRemainingUnsafe(remaining)
			})
		},
		OnDone: overlay.handleDone,
	})
	overlay.logger.Debug("break overlay shown", "duration", total)
}

// Skip ends the running countdown early. It is a no-op when no break is shown.
func (overlay *Window) Skip() {
	if !overlay.engine.Finish() {
		return
	}
	overlay.logger.Info("break skipped")
}

// Dismiss hides the overlay without reporting completion. Used when the
// break ends for another reason, such as Stop or Pause.
// Must run on the UI goroutine.
func (overlay *Window) Dismiss() {
	overlay.engine.Stop()
	overlay.hideUnsafe()
}

// Visible reports whether a break is being presented.
func (overlay *Window) Visible() bool {
	overlay.mu.Lock()
	defer overlay.mu.Unlock()
	return overlay.visible
}

// HandleEvent reacts to controller events. Must run on the UI goroutine.
func (overlay *Window) HandleEvent(event cycle.Event) {
	switch event.Type {
	case cycle.EventBreakStarted:
		overlay.ShowBreak(overlay.config.BreakDuration)
	case cycle.EventStateChange:
		if event.Phase != cycle.PhaseOnBreak && overlay.Visible() {
			overlay.Dismiss()
		}
	}
}

// UpdateConfig updates overlay visuals.
func (overlay *Window) UpdateConfig(config Config) {
	config = config.withDefaults()
	overlay.config = config
	overlay.background.FillColor = color.NRGBA{A: config.Opacity}
	overlay.message.Text = config.Message
	canvas.Refresh(overlay.background)
	overlay.message.Refresh()
	if overlay.Visible() {
		overlay.applyWindowMode()
	}
}

func (config Config) withDefaults() Config {
	if config.Message == "" {
		config.Message = DefaultMessage
	}
	if config.BreakDuration <= 0 {
		config.BreakDuration = model.BreakDuration
	}
	return config
}

func (overlay *Window) handleDone(reason countdown.Reason) {
	overlay.mu.Lock()
	onComplete := overlay.onComplete
	overlay.mu.Unlock()

	overlay.logger.Debug("break countdown finished", "reason", string(reason))
	fyne.Do(overlay.hideUnsafe)
	if onComplete != nil {
		onComplete()
	}
}

func (overlay *Window) hideUnsafe() {
	overlay.mu.Lock()
	wasVisible := overlay.visible
	overlay.visible = false
	overlay.mu.Unlock()
	if !wasVisible {
		return
	}
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(false)
	}
	overlay.window.Hide()
}

func (overlay *Window) setRemainingUnsafe(remaining time.Duration) {
	overlay.mu.Lock()
	total := overlay.total
	overlay.mu.Unlock()

	overlay.timerLabel.Text = cycle.FormatRemaining(remaining)
	overlay.timerLabel.Refresh()
	overlay.progress.SetValue(elapsedFraction(remaining, total))
}

func (overlay *Window) applyWindowMode() {
	overlay.applyNativeOpacity(overlay.config.Opacity)
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(true)
		return
	}
	overlay.window.SetFullScreen(false)
	overlay.resizeToScreenFraction()
}

func (overlay *Window) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := overlay.window.Canvas().Size()
	// A screen-sized canvas stands in for the monitor size.
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	width := screenSize.Width * overlayWidthFraction
	height := screenSize.Height * overlayHeightFraction
	minSize := overlay.window.Content().MinSize()
	if width < minSize.Width {
		width = minSize.Width
	}
	if height < minSize.Height {
		height = minSize.Height
	}

	overlay.window.Resize(fyne.NewSize(width, height))
	overlay.window.CenterOnScreen()
}

// elapsedFraction maps remaining time onto the progress bar range [0, 1].
func elapsedFraction(remaining, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	if remaining < 0 {
		remaining = 0
	}
	if remaining > total {
		remaining = total
	}
	return float64(total-remaining) / float64(total)
}
