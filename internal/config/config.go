// Package config resolves process configuration from a .env file, the
// environment and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// AppName names the application in paths, locks and window titles.
const AppName = "RestCycle"

// Environment variables.
const (
	EnvDebug     = "RESTCYCLE_DEBUG"
	EnvLogLevel  = "RESTCYCLE_LOG_LEVEL"
	EnvConfigDir = "RESTCYCLE_CONFIG_DIR"
)

// ErrInvalidLogLevel is returned for unknown log level names.
var ErrInvalidLogLevel = errors.New("invalid log level")

// Config holds process configuration.
type Config struct {
	// DebugMode is only meaningful when DebugSet is true; otherwise the
	// saved preference wins.
	DebugMode bool
	DebugSet  bool
	LogLevel  slog.Level
	ConfigDir string
}

// Load reads .env files (missing files are ignored), then the environment,
// then args.
func Load(args []string, envFiles ...string) (Config, error) {
	loadDotEnv(envFiles...)

	config, err := FromEnv()
	if err != nil {
		return config, err
	}
	return ParseFlags(args, config)
}

func loadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug("no .env file loaded", "error", err)
		return
	}
	slog.Debug("loaded .env file")
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	config := Config{LogLevel: slog.LevelInfo}

	if raw, ok := os.LookupEnv(EnvDebug); ok && strings.TrimSpace(raw) != "" {
		value, valid := ParseBool(raw)
		if !valid {
			slog.Warn("invalid boolean value, ignoring", "key", EnvDebug, "value", raw)
		} else {
			config.DebugMode = value
			config.DebugSet = true
		}
	}

	if raw := os.Getenv(EnvLogLevel); raw != "" {
		level, err := ParseLogLevel(raw)
		if err != nil {
			return config, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		config.LogLevel = level
	}

	config.ConfigDir = os.Getenv(EnvConfigDir)
	return config, nil
}

// ParseFlags applies command line flags over base.
func ParseFlags(args []string, base Config) (Config, error) {
	config := base
	flags := flag.NewFlagSet(AppName, flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	debug := flags.Bool("debug", base.DebugMode, "use the 5 second debug work interval (overrides $"+EnvDebug+")")
	logLevel := flags.String("log-level", base.LogLevel.String(), "log level: debug, info, warn, error (overrides $"+EnvLogLevel+")")
	configDir := flags.String("config-dir", base.ConfigDir, "directory holding settings.yaml (overrides $"+EnvConfigDir+")")

	if err := flags.Parse(args); err != nil {
		return base, fmt.Errorf("parse flags: %w", err)
	}

	level, err := ParseLogLevel(*logLevel)
	if err != nil {
		return base, fmt.Errorf("-log-level: %w", err)
	}
	config.LogLevel = level
	config.ConfigDir = *configDir

	flags.Visit(func(set *flag.Flag) {
		if set.Name == "debug" {
			config.DebugMode = *debug
			config.DebugSet = true
		}
	})
	return config, nil
}

// ParseBool accepts true/1/yes/on and false/0/no/off, case-insensitively.
func ParseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	default:
		return false, false
	}
}

// ParseLogLevel maps a level name to a slog.Level.
func ParseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, value)
	}
}

// NewLogger returns a text logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
