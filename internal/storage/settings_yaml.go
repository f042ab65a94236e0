package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"restcycle/internal/core/model"
)

const settingsFileName = "settings.yaml"

// Pointers distinguish a missing key from an explicit false.
type yamlSettings struct {
	DebugMode            *bool    `yaml:"debug_mode,omitempty"`
	NotificationsEnabled *bool    `yaml:"notifications_enabled,omitempty"`
	IdleResetEnabled     *bool    `yaml:"idle_reset_enabled,omitempty"`
	LaunchAtLogin        *bool    `yaml:"launch_at_login,omitempty"`
	OverlayOpacity       *float64 `yaml:"overlay_opacity,omitempty"`
	Fullscreen           *bool    `yaml:"fullscreen,omitempty"`
}

// SettingsStore reads and writes preferences in a single YAML file.
type SettingsStore struct {
	path string
}

// NewSettingsStore resolves the settings file location. An empty configDir
// selects <user config dir>/<appName>.
func NewSettingsStore(appName, configDir string) (*SettingsStore, error) {
	if configDir == "" {
		userConfigDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve user config dir: %w", err)
		}
		configDir = filepath.Join(userConfigDir, appName)
	}
	return &SettingsStore{path: filepath.Join(configDir, settingsFileName)}, nil
}

// Path returns the settings file path.
func (store *SettingsStore) Path() string {
	return store.path
}

// Dir returns the directory holding the settings file.
func (store *SettingsStore) Dir() string {
	return filepath.Dir(store.path)
}

// Exists reports whether a settings file has been written.
func (store *SettingsStore) Exists() bool {
	_, err := os.Stat(store.path)
	return err == nil
}

// Load reads user preferences from YAML.
// If the file does not exist, default settings are returned.
func (store *SettingsStore) Load() (model.Settings, error) {
	settings := model.DefaultSettings()

	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// Save writes user preferences to YAML.
func (store *SettingsStore) Save(settings model.Settings) error {
	if err := os.MkdirAll(store.Dir(), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	opacity := model.ClampOpacity(settings.OverlayOpacity)
	fileData := yamlSettings{
		DebugMode:            &settings.DebugMode,
		NotificationsEnabled: &settings.NotificationsEnabled,
		IdleResetEnabled:     &settings.IdleResetEnabled,
		LaunchAtLogin:        &settings.LaunchAtLogin,
		OverlayOpacity:       &opacity,
		Fullscreen:           &settings.Fullscreen,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	tempPath := store.path + ".tmp"
	if err := os.WriteFile(tempPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tempPath, store.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *model.Settings, fileData yamlSettings) {
	if fileData.DebugMode != nil {
		settings.DebugMode = *fileData.DebugMode
	}
	if fileData.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *fileData.NotificationsEnabled
	}
	if fileData.IdleResetEnabled != nil {
		settings.IdleResetEnabled = *fileData.IdleResetEnabled
	}
	if fileData.LaunchAtLogin != nil {
		settings.LaunchAtLogin = *fileData.LaunchAtLogin
	}
	if fileData.OverlayOpacity != nil &&
		*fileData.OverlayOpacity >= model.MinOverlayOpacity &&
		*fileData.OverlayOpacity <= model.MaxOverlayOpacity {
		settings.OverlayOpacity = *fileData.OverlayOpacity
	}
	if fileData.Fullscreen != nil {
		settings.Fullscreen = *fileData.Fullscreen
	}
}
