// Package lock keeps two harvests from driving the same browser profile.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// HeldError is returned when another process holds the profile lock.
type HeldError struct {
	PID   int
	Run   string
	Since time.Time
	Path  string
}

func (e *HeldError) Error() string {
	msg := fmt.Sprintf("browser profile locked by PID %d", e.PID)
	if e.Run != "" {
		msg += " (run " + e.Run + ")"
	}
	if !e.Since.IsZero() {
		msg += " since " + e.Since.Format(time.RFC3339)
	}
	return msg + ": " + e.Path
}

// Lock represents an acquired profile lock file.
type Lock struct {
	file *os.File
	path string
}

// PathFor returns the lock file guarding profileDir. It sits next to the
// profile so the browser never sees it.
func PathFor(profileDir string) string {
	return filepath.Clean(profileDir) + ".lock"
}

// Acquire takes an exclusive lock on profileDir for run.
// Returns HeldError if another process already holds it.
func Acquire(profileDir, run string) (*Lock, error) {
	lockPath := PathFor(profileDir)

	if err := os.MkdirAll(filepath.Dir(lockPath), 0700); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		data, _ := os.ReadFile(lockPath)
		_ = f.Close()
		held := parse(string(data))
		held.Path = lockPath
		return nil, held
	}

	if err := f.Truncate(0); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		_ = f.Close()
		return nil, err
	}
	content := fmt.Sprintf("pid=%d\nrun=%s\ntime=%s\n", os.Getpid(), run, time.Now().UTC().Format(time.RFC3339))
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &Lock{file: f, path: lockPath}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release releases the lock. Safe to call on nil receiver and more than once.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	// Remove before closing so no other process can observe a stale file it
	// managed to lock.
	_ = os.Remove(l.path)
	err := l.file.Close()
	l.file = nil
	return err
}

func parse(content string) *HeldError {
	held := &HeldError{}
	for _, line := range strings.Split(content, "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "pid":
			held.PID, _ = strconv.Atoi(value)
		case "run":
			held.Run = value
		case "time":
			held.Since, _ = time.Parse(time.RFC3339, value)
		}
	}
	return held
}
