//go:build darwin

package platform

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

func (service *platformService) EnableAutostart(appName, execPath string) error {
	if err := validateLoginItem(appName, execPath); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	plistPath, err := launchAgentPath(appName)
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(plistPath), 0o755); err != nil {
		return fmt.Errorf("enable autostart: create LaunchAgents dir: %w", err)
	}
	if err := os.WriteFile(plistPath, buildLaunchAgentPlist(launchAgentLabel(appName), execPath), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write plist: %w", err)
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	if err := validateLoginItem(appName, "-"); err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	plistPath, err := launchAgentPath(appName)
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := os.Remove(plistPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("disable autostart: remove plist: %w", err)
	}
	return nil
}

func (service *platformService) AutostartEnabled(appName string) (bool, error) {
	plistPath, err := launchAgentPath(appName)
	if err != nil {
		return false, fmt.Errorf("autostart status: %w", err)
	}
	return fileExists(plistPath)
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "Library", "Application Support")
}

func launchAgentPath(appName string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, "Library", "LaunchAgents", launchAgentLabel(appName)+".plist"), nil
}

func launchAgentLabel(appName string) string {
	return "io.restcycle." + slugName(appName)
}

// buildLaunchAgentPlist renders a LaunchAgent that starts execPath at login.
func buildLaunchAgentPlist(label, execPath string) []byte {
	var buffer bytes.Buffer
	buffer.WriteString(xml.Header)
	buffer.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	buffer.WriteString("<plist version=\"1.0\">\n<dict>\n")
	buffer.WriteString("\t<key>Label</key>\n\t<string>")
	_ = xml.EscapeText(&buffer, []byte(label))
	buffer.WriteString("</string>\n\t<key>ProgramArguments</key>\n\t<array>\n\t\t<string>")
	_ = xml.EscapeText(&buffer, []byte(execPath))
	buffer.WriteString("</string>\n\t</array>\n\t<key>RunAtLoad</key>\n\t<true/>\n</dict>\n</plist>\n")
	return buffer.Bytes()
}
