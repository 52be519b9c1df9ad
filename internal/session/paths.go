// Package session maps a named harvest profile to its directory tree under
// ~/.waharvest (or $WAHARVEST_HOME).
package session

import (
	"os"
	"path/filepath"
)

// EnvHome overrides the base directory.
const EnvHome = "WAHARVEST_HOME"

// BaseDir returns $WAHARVEST_HOME, or ~/.waharvest.
func BaseDir() string {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".waharvest")
}

// Dir returns the session-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "sessions", name)
}

// ProfileDir returns the Chrome user-data directory that keeps the login.
func ProfileDir(name string) string {
	return filepath.Join(Dir(name), "chrome-profile")
}

// DBPath returns the harvest archive path.
func DBPath(name string) string {
	return filepath.Join(Dir(name), "harvest.db")
}

// LogDir returns the log directory for a session.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the harvest log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "harvest.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnvPath returns the global .env file path.
func EnvPath() string {
	return filepath.Join(BaseDir(), ".env")
}

// EnsureDir creates the session directory tree with proper permissions.
func EnsureDir(name string) error {
	for _, d := range []string{Dir(name), LogDir(name), ProfileDir(name)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
