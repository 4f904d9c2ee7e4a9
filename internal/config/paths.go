// Package config manages user preferences stored as JSON5/JSON files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "tungsten"

// Dir returns the tungsten config directory.
// Respects XDG_CONFIG_HOME; defaults to $HOME/.config/tungsten.
func Dir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the tungsten data directory.
// Respects XDG_DATA_HOME; defaults to $HOME/.local/share/tungsten.
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, fallback, appName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.json"), nil
}

// DefaultStoreDir returns the directory documents are saved to when
// store_dir is unset.
func DefaultStoreDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "documents"), nil
}
