package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"restcycle/internal/config"
	"restcycle/internal/core/cycle"
	"restcycle/internal/core/idlewatch"
	"restcycle/internal/core/model"
	"restcycle/internal/platform"
	"restcycle/internal/session"
	"restcycle/internal/storage"
	"restcycle/internal/ui/countdown"
	"restcycle/internal/ui/notify"
	"restcycle/internal/ui/overlay"
	"restcycle/internal/ui/preferences"
	"restcycle/internal/ui/tray"
	"restcycle/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "restcycle: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	activate := make(chan struct{}, 1)
	guard, err := platform.AcquireSingleInstance(config.AppName, func() {
		select {
		case activate <- struct{}{}:
		default:
		}
	})
	if errors.Is(err, platform.ErrAlreadyRunning) {
		logger.Info("already running, asked the existing instance to show itself")
		return nil
	}
	if err != nil {
		return fmt.Errorf("single instance: %w", err)
	}
	defer func() {
		_ = guard.Release()
	}()

	service := platform.NewService()
	store, err := openSettingsStore(cfg, service)
	if err != nil {
		return fmt.Errorf("settings store: %w", err)
	}
	firstRun := !store.Exists()
	saved, err := store.Load()
	if err != nil {
		logger.Warn("using default settings", "path", store.Path(), "error", err)
	}
	var debugOverride *bool
	if cfg.DebugSet {
		debugOverride = &cfg.DebugMode
	}
	effective := session.Effective(saved, debugOverride)
	syncAutostart(service, saved.LaunchAtLogin, logger)

	controller := cycle.New(model.DefaultCycleConfig(), cycle.Options{
		Logger:    logger.With("component", "cycle"),
		DebugMode: effective.DebugMode,
	})

	fyneApp := app.NewWithID("io.restcycle.app")
	fyneApp.SetIcon(resources.MustLoad(resources.IconApp))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return errors.New("system tray unsupported on this platform")
	}

	overlayWindow := overlay.New(fyneApp, overlayConfig(effective, controller.BreakDuration()),
		countdown.New(countdown.Config{Interval: time.Second}), logger.With("component", "overlay"))
	overlayWindow.SetOnComplete(func() {
		// A pause or stop in the last second of the countdown wins.
		controller.CompleteBreak()
	})

	notifier := notify.New(fyneApp, config.AppName, effective.NotificationsEnabled, logger.With("component", "notify"))

	idleWatcher := idlewatch.New(platform.NewIdleProvider(), controller, idlewatch.DefaultConfig(), idlewatch.Options{
		Logger: logger.With("component", "idle"),
	})
	idleWatcher.SetEnabled(effective.IdleResetEnabled)

	prefsSession := session.New(store, controller, saved, session.Options{
		Logger:        logger.With("component", "settings"),
		DebugOverride: debugOverride,
		OnApply: func(previous, current model.Settings) {
			notifier.SetEnabled(current.NotificationsEnabled)
			idleWatcher.SetEnabled(current.IdleResetEnabled)
			overlayWindow.UpdateConfig(overlayConfig(current, controller.BreakDuration()))
			if current.LaunchAtLogin != previous.LaunchAtLogin {
				if err := platform.ApplyAutostart(service, config.AppName, current.LaunchAtLogin); err != nil {
					logger.Warn("launch at login", "enabled", current.LaunchAtLogin, "error", err)
				}
			}
		},
	})
	prefsWindow := preferences.New(fyneApp, prefsSession.Effective(), prefsSession.Apply)
	prefsSession.OnChange(prefsWindow.UpdateSettings)

	trayManager := tray.New(desktopApp, nil, controller, config.AppName, tray.Icons{
		Active: resources.MustLoad(resources.IconActive),
		Paused: resources.MustLoad(resources.IconPaused),
		Break:  resources.MustLoad(resources.IconBreak),
	}, tray.Callbacks{
		OnPreferences: prefsWindow.Show,
		OnDebugMode:   prefsSession.SetDebugMode,
		OnQuit: func() {
			idleWatcher.Stop()
			controller.Stop()
			fyneApp.Quit()
		},
	})

	controller.Subscribe(func(event cycle.Event) {
		notifier.HandleEvent(event)
		fyne.Do(func() {
			overlayWindow.HandleEvent(event)
			trayManager.HandleEvent(event)
		})
	})

	fyneApp.Lifecycle().SetOnStarted(func() {
		trayManager.AttachTitle(tray.SystrayTitle{})
		controller.Start()
		logger.Info("break cycle started", "work", controller.WorkDuration(), "settings", store.Path())
		if firstRun {
			prefsWindow.Show()
		}
		go func() {
			for range activate {
				fyne.Do(prefsWindow.Show)
			}
		}()
	})

	fyneApp.Run()
	idleWatcher.Stop()
	controller.Stop()
	return nil
}

func openSettingsStore(cfg config.Config, service platform.Service) (*storage.SettingsStore, error) {
	configDir := cfg.ConfigDir
	if configDir == "" {
		base, err := service.GetConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(base, config.AppName)
	}
	return storage.NewSettingsStore(config.AppName, configDir)
}

// syncAutostart repairs the login item when it disagrees with the saved preference.
func syncAutostart(service platform.Service, enabled bool, logger *slog.Logger) {
	current, err := service.AutostartEnabled(config.AppName)
	if err != nil {
		logger.Debug("read launch at login state", "error", err)
		return
	}
	if current == enabled {
		return
	}
	if err := platform.ApplyAutostart(service, config.AppName, enabled); err != nil {
		logger.Warn("launch at login", "enabled", enabled, "error", err)
	}
}

func overlayConfig(settings model.Settings, breakDuration time.Duration) overlay.Config {
	return overlay.Config{
		Opacity:       settings.OverlayAlpha(),
		Fullscreen:    settings.Fullscreen,
		Message:       overlay.DefaultMessage,
		BreakDuration: breakDuration,
	}
}
