package config

import (
	"os"
	"path/filepath"
)

// AppName names the per-user directories.
const AppName = "panecraft"

// ConfigDir returns $XDG_CONFIG_HOME/panecraft or ~/.config/panecraft.
func ConfigDir() (string, error) {
	return xdg("XDG_CONFIG_HOME", ".config")
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DataDir returns $XDG_DATA_HOME/panecraft or ~/.local/share/panecraft.
func DataDir() (string, error) {
	return xdg("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// CacheDir returns $XDG_CACHE_HOME/panecraft or ~/.cache/panecraft.
func CacheDir() (string, error) {
	return xdg("XDG_CACHE_HOME", ".cache")
}

func xdg(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}
