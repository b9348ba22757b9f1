package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/petpix/internal/core/config"
)

type Flags struct {
	LogLevel     string
	LogFile      string
	ConfigPath   string
	APIBase      string
	DefaultLabel string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// ConfigErr is set when the config failed to load. Commands that need
	// the service return it; config validate reports on it.
	ConfigErr error
}

// Overrides returns the config values given by flags or environment.
func (f *Flags) Overrides() config.Overrides {
	return config.Overrides{
		APIBase:      f.APIBase,
		DefaultLabel: f.DefaultLabel,
	}
}

// Ready returns an error if the application could not be configured.
func (f *Flags) Ready() error {
	if f.ConfigErr != nil {
		return fmt.Errorf("load config: %w", f.ConfigErr)
	}
	if f.Config == nil {
		return fmt.Errorf("config not loaded")
	}
	return nil
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "petpix", "config.yaml")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/petpix/petpix.log
// On Linux: $XDG_STATE_HOME/petpix/petpix.log (defaults to ~/.local/state/petpix/petpix.log)
func DefaultLogFile() string {
	// Check XDG_STATE_HOME first (works on both macOS and Linux)
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "petpix", "petpix.log")
	}

	home, _ := os.UserHomeDir()

	// On macOS, use ~/Library/Logs
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "petpix", "petpix.log")
	}

	// On Linux, use ~/.local/state
	return filepath.Join(home, ".local", "state", "petpix", "petpix.log")
}
