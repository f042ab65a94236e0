package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"restcycle/internal/config"
	"restcycle/internal/core/cycle"
	"restcycle/internal/core/idlewatch"
	"restcycle/internal/core/model"
	"restcycle/internal/platform"
	"restcycle/internal/storage"
	"restcycle/internal/ui/tui"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

const logFileName = "restcycle-term.log"

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
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal; run the tray build instead")
	}

	configDir := cfg.ConfigDir
	if configDir == "" {
		base, err := platform.NewService().GetConfigDir()
		if err != nil {
			return err
		}
		configDir = filepath.Join(base, config.AppName)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	// The TUI owns stdout, so logs go to a file.
	logFile, err := os.OpenFile(filepath.Join(configDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := config.NewLogger(logFile, cfg.LogLevel)
	slog.SetDefault(logger)

	store, err := storage.NewSettingsStore(config.AppName, configDir)
	if err != nil {
		return err
	}
	settings, err := store.Load()
	if err != nil {
		logger.Warn("using default settings", "path", store.Path(), "error", err)
	}
	if cfg.DebugSet {
		settings.DebugMode = cfg.DebugMode
	}

	controller := cycle.New(model.DefaultCycleConfig(), cycle.Options{
		Logger:    logger.With("component", "cycle"),
		DebugMode: settings.DebugMode,
	})
	idleWatcher := idlewatch.New(platform.NewIdleProvider(), controller, idlewatch.DefaultConfig(), idlewatch.Options{
		Logger: logger.With("component", "idle"),
	})
	idleWatcher.SetEnabled(settings.IdleResetEnabled)
	defer idleWatcher.Stop()

	program := tea.NewProgram(tui.NewModel(controller, tui.WithBell(os.Stderr)), tea.WithAltScreen())
	defer controller.Stop()
	subscription := tui.Subscribe(controller, program.Send)
	defer subscription.Unsubscribe()

	logger.Info("terminal session started", "debug", settings.DebugMode)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
