package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv registers restoration of key and removes it for the test.
func clearEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input string
		value bool
		valid bool
	}{
		{"true", true, true},
		{" YES ", true, true},
		{"1", true, true},
		{"on", true, true},
		{"false", false, true},
		{"No", false, true},
		{"0", false, true},
		{"off", false, true},
		{"maybe", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			value, valid := ParseBool(tt.input)
			assert.Equal(t, tt.value, value)
			assert.Equal(t, tt.valid, valid)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLogLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLogLevel("loud")
	assert.True(t, errors.Is(err, ErrInvalidLogLevel))
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvDebug, "yes")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvConfigDir, "/tmp/restcycle")

	config, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, config.DebugMode)
	assert.True(t, config.DebugSet)
	assert.Equal(t, slog.LevelError, config.LogLevel)
	assert.Equal(t, "/tmp/restcycle", config.ConfigDir)
}

func TestFromEnvIgnoresInvalidDebug(t *testing.T) {
	t.Setenv(EnvDebug, "sometimes")
	clearEnv(t, EnvLogLevel)
	clearEnv(t, EnvConfigDir)

	config, err := FromEnv()
	require.NoError(t, err)
	assert.False(t, config.DebugSet)
	assert.Equal(t, slog.LevelInfo, config.LogLevel)
}

func TestFromEnvRejectsInvalidLogLevel(t *testing.T) {
	clearEnv(t, EnvDebug)
	t.Setenv(EnvLogLevel, "chatty")

	_, err := FromEnv()
	assert.True(t, errors.Is(err, ErrInvalidLogLevel))
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	base := Config{DebugMode: true, DebugSet: true, LogLevel: slog.LevelWarn, ConfigDir: "/env"}

	config, err := ParseFlags([]string{"-debug=false", "-log-level", "debug", "-config-dir", "/flag"}, base)
	require.NoError(t, err)
	assert.False(t, config.DebugMode)
	assert.True(t, config.DebugSet)
	assert.Equal(t, slog.LevelDebug, config.LogLevel)
	assert.Equal(t, "/flag", config.ConfigDir)
}

func TestFlagsKeepBaseWhenUnset(t *testing.T) {
	base := Config{LogLevel: slog.LevelWarn, ConfigDir: "/env"}

	config, err := ParseFlags(nil, base)
	require.NoError(t, err)
	assert.False(t, config.DebugSet)
	assert.Equal(t, slog.LevelWarn, config.LogLevel)
	assert.Equal(t, "/env", config.ConfigDir)
}

func TestFlagsRejectUnknown(t *testing.T) {
	_, err := ParseFlags([]string{"-work-minutes", "30"}, Config{})
	assert.Error(t, err)
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t, EnvDebug)
	clearEnv(t, EnvLogLevel)
	clearEnv(t, EnvConfigDir)

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(EnvDebug+"=on\n"+EnvLogLevel+"=debug\n"), 0o600))

	config, err := Load(nil, envFile)
	require.NoError(t, err)
	assert.True(t, config.DebugMode)
	assert.True(t, config.DebugSet)
	assert.Equal(t, slog.LevelDebug, config.LogLevel)
}
