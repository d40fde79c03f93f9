// Package paths resolves configuration and data directory locations.
package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// AppName is the directory name keepsake itself uses under the platform
// configuration and data roots.
const AppName = "keepsake"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "KEEPSAKE_CONFIG_DIR"
	EnvDataDir   = "KEEPSAKE_DATA_DIR"
)

// ErrAppNameEmpty is returned when a platform directory is requested without
// an application name.
var ErrAppNameEmpty = errors.New("application name must not be empty")

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific configuration directory for app.
//
// Linux:   $XDG_CONFIG_HOME/<app> (fallback ~/.config/<app>)
// macOS:   ~/Library/Application Support/<app>
// Windows: %APPDATA%/<app>
func DefaultConfigDir(app string) (string, error) {
	if strings.TrimSpace(app) == "" {
		return "", ErrAppNameEmpty
	}
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, app), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", app), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, app), nil
	}
}

// DefaultDataDir returns the per-application local data directory for app.
//
// Linux:   $XDG_DATA_HOME/<app> (fallback ~/.local/share/<app>)
// macOS:   ~/Library/Application Support/<app>
// Windows: %APPDATA%/<app>
func DefaultDataDir(app string) (string, error) {
	if strings.TrimSpace(app) == "" {
		return "", ErrAppNameEmpty
	}
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, app), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", app), nil
	default:
		// macOS and Windows: same as config dir.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, app), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > KEEPSAKE_CONFIG_DIR env > DefaultConfigDir(AppName).
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir(AppName)
}

// ResolveDataDir returns the directory settings documents live in, following
// the precedence chain: flag > configValue > KEEPSAKE_DATA_DIR env >
// DefaultDataDir(app).
func ResolveDataDir(app, flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultDataDir(app)
}

// Expand replaces a leading "~" with the user's home directory and returns
// the absolute form of path.
func Expand(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
