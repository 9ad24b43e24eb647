package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
)

const (
	// AppName is the application name used for config directories.
	AppName = "modrinth-updater"
	// ConfigFileName is the default config file name.
	ConfigFileName = "config.toml"
	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "MODRINTH_UPDATER"
	// DiagFileName is the name of the diagnostic artifact.
	DiagFileName = "debug.txt"
)

// DefaultConfigDir returns the configuration directory, e.g.
// ~/.config/modrinth-updater on Linux.
func DefaultConfigDir() (string, error) {
	return filepath.Join(xdg.ConfigHome, AppName), nil
}

// DefaultConfigPath returns the full path to the default config file.
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// DefaultStateDir returns the directory for logs and the diagnostic file.
func DefaultStateDir() (string, error) {
	return filepath.Join(xdg.StateHome, AppName), nil
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() (string, error) {
	dir, err := DefaultStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName+".log"), nil
}

// DefaultDiagPath returns the default diagnostic artifact path.
func DefaultDiagPath() (string, error) {
	dir, err := DefaultStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DiagFileName), nil
}

// DefaultMinecraftDir returns the game directory used by the official
// launcher on the current OS.
func DefaultMinecraftDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, ".minecraft"), nil

	case "darwin":
		dir := filepath.Join(home, "Library", "Application Support", "minecraft")
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		}
		return filepath.Join(home, ".minecraft"), nil

	default:
		return filepath.Join(home, ".minecraft"), nil
	}
}

// ExpandPath expands a leading ~ and cleans the path. Empty stays empty.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(expanded), nil
}
