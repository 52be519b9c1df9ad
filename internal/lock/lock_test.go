package lock

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireAndRelease(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "chrome-profile")

	l, err := Acquire(profile, "run-1")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	if !strings.Contains(string(data), "run=run-1") {
		t.Errorf("lock file = %q, want run id", data)
	}

	if err := l.Release(); err != nil {
		t.Errorf("Release() error = %v", err)
	}
	if _, err := os.Stat(l.Path()); !os.IsNotExist(err) {
		t.Errorf("lock file still present after Release: %v", err)
	}
}

func TestDoubleAcquireFails(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "chrome-profile")

	l1, err := Acquire(profile, "run-1")
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	defer func() { _ = l1.Release() }()

	_, err = Acquire(profile, "run-2")
	if err == nil {
		t.Fatal("second Acquire() should fail")
	}

	var held *HeldError
	if !errors.As(err, &held) {
		t.Fatalf("expected HeldError, got %T: %v", err, err)
	}
	if held.PID != os.Getpid() || held.Run != "run-1" || held.Since.IsZero() {
		t.Errorf("held = %+v", held)
	}
	if held.Path != PathFor(profile) {
		t.Errorf("Path = %q, want %q", held.Path, PathFor(profile))
	}
}

func TestReacquireAfterRelease(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "p")

	l, err := Acquire(profile, "a")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Release(); err != nil {
		t.Fatal(err)
	}
	l, err = Acquire(profile, "b")
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	_ = l.Release()
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Errorf("nil Release() error = %v", err)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	l, err := Acquire(filepath.Join(t.TempDir(), "p"), "r")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if err := l.Release(); err != nil {
		t.Errorf("first Release() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
}

func TestPathFor(t *testing.T) {
	if got := PathFor("/tmp/x/profile/"); got != "/tmp/x/profile.lock" {
		t.Errorf("PathFor() = %q", got)
	}
}
