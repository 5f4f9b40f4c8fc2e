// Package paths provides centralized path resolution for mediapanel's config and runtime files.
//
// Layout:
//
//	Config:  ~/.config/mediapanel-config.json   (override dir: MEDIAPANEL_CONFIG_DIR)
//	Runtime: $XDG_RUNTIME_DIR/mediapanel.*      (override: MEDIAPANEL_RUNTIME_DIR, fallback /tmp)
package paths

import (
	"os"
	"path/filepath"
	"sync"
)

// ConfigFileName is the name of the per-user configuration document.
const ConfigFileName = "mediapanel-config.json"

var (
	configDirOnce   sync.Once
	configDirCached string

	runtimeDirOnce   sync.Once
	runtimeDirCached string
)

// ConfigDir resolves the config directory.
// Priority: MEDIAPANEL_CONFIG_DIR env > ~/.config/
func ConfigDir() string {
	configDirOnce.Do(func() {
		if env := os.Getenv("MEDIAPANEL_CONFIG_DIR"); env != "" {
			configDirCached = env
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				configDirCached = "."
			} else {
				configDirCached = filepath.Join(home, ".config")
			}
		}
	})
	return configDirCached
}

// RuntimeDir resolves the directory holding the pidfile and unix socket.
// Priority: MEDIAPANEL_RUNTIME_DIR env > XDG_RUNTIME_DIR env > /tmp
func RuntimeDir() string {
	runtimeDirOnce.Do(func() {
		switch {
		case os.Getenv("MEDIAPANEL_RUNTIME_DIR") != "":
			runtimeDirCached = os.Getenv("MEDIAPANEL_RUNTIME_DIR")
		case os.Getenv("XDG_RUNTIME_DIR") != "":
			runtimeDirCached = os.Getenv("XDG_RUNTIME_DIR")
		default:
			runtimeDirCached = os.TempDir()
		}
	})
	return runtimeDirCached
}

// ConfigPath returns the full path to the config document.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// SocketPath returns the default unix socket path used with --socket.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "mediapanel.sock")
}

// PidPath returns the pidfile path guarding against a second daemon.
func PidPath() string {
	return filepath.Join(RuntimeDir(), "mediapanel.pid")
}

// ResetForTest clears cached values so tests can re-run resolution logic.
// Only use in tests.
func ResetForTest() {
	configDirOnce = sync.Once{}
	configDirCached = ""
	runtimeDirOnce = sync.Once{}
	runtimeDirCached = ""
}
