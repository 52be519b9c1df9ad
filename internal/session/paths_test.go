package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv(EnvHome, base)

	got := Dir("main")
	want := filepath.Join(base, "sessions", "main")
	if got != want {
		t.Errorf("Dir(main) = %q, want %q", got, want)
	}
}

func TestDefaultBase(t *testing.T) {
	t.Setenv(EnvHome, "")
	home, _ := os.UserHomeDir()
	if got, want := BaseDir(), filepath.Join(home, ".waharvest"); got != want {
		t.Errorf("BaseDir() = %q, want %q", got, want)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())

	tests := []struct {
		got    string
		suffix string
	}{
		{DBPath("test"), filepath.Join("sessions", "test", "harvest.db")},
		{LogPath("test"), filepath.Join("sessions", "test", "logs", "harvest.log")},
		{ProfileDir("test"), filepath.Join("sessions", "test", "chrome-profile")},
		{ConfigPath(), "config.toml"},
		{EnvPath(), ".env"},
	}
	for _, tt := range tests {
		if !strings.HasSuffix(tt.got, tt.suffix) {
			t.Errorf("%q, want suffix %q", tt.got, tt.suffix)
		}
	}
}

func TestEnsureDir(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())

	if err := EnsureDir("test"); err != nil {
		t.Fatal(err)
	}
	for _, d := range []string{Dir("test"), LogDir("test"), ProfileDir("test")} {
		info, err := os.Stat(d)
		if err != nil {
			t.Fatalf("%s not created: %v", d, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", d)
		}
		if perm := info.Mode().Perm(); perm != 0700 {
			t.Errorf("%s permission = %o, want 0700", d, perm)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		flag, conf string
		want       string
		wantErr    bool
	}{
		{"default", "", "", "main", false},
		{"config", "", "work", "work", false},
		{"flag wins", "side", "work", "side", false},
		{"max length", strings.Repeat("a", 64), "", strings.Repeat("a", 64), false},
		{"too long", strings.Repeat("a", 65), "", "", true},
		{"uppercase", "Main", "", "", true},
		{"slash", "../etc", "", "", true},
		{"bad config", "", "my session", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.flag, tt.conf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q, %q) error = %v, wantErr %v", tt.flag, tt.conf, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidName) {
				t.Errorf("error %v is not ErrInvalidName", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.flag, tt.conf, got, tt.want)
			}
		})
	}
}
