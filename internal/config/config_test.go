package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/waharvest/internal/harvest"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.DefaultSession = "work"
	cfg.Harvest.ScrollSettle = Duration{250 * time.Millisecond}
	cfg.Lexicon.Positive = []string{"yay"}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultSession != "work" {
		t.Errorf("DefaultSession = %q, want %q", loaded.DefaultSession, "work")
	}
	if loaded.Harvest.ScrollSettle.Duration != 250*time.Millisecond {
		t.Errorf("ScrollSettle = %v, want 250ms", loaded.Harvest.ScrollSettle)
	}
	if len(loaded.Lexicon.Positive) != 1 || loaded.Lexicon.Positive[0] != "yay" {
		t.Errorf("Positive = %v, want [yay]", loaded.Lexicon.Positive)
	}
}

func TestWriteDurationsAsText(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Default()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), `scroll_settle = "1.5s"`) {
		t.Errorf("output missing scroll_settle = \"1.5s\":\n%s", buf.String())
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[harvest]
mode = "threads"
thread_timeout = "4s"

[selectors]
chat_pane = "#side"
group_sender = "span.sender"
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Harvest.Mode != "threads" || cfg.Harvest.ThreadTimeout.Duration != 4*time.Second {
		t.Errorf("harvest = %+v", cfg.Harvest)
	}
	if cfg.Harvest.MaxChats != 20 || cfg.Media.Concurrency != 4 {
		t.Errorf("defaults lost: max_chats=%d concurrency=%d", cfg.Harvest.MaxChats, cfg.Media.Concurrency)
	}
	if cfg.Selectors.ChatPane != "#side" || cfg.Selectors.ChatRow != "div[role='row']" {
		t.Errorf("selectors = %+v", cfg.Selectors)
	}
	if cfg.Selectors.GroupSender != "span.sender" {
		t.Errorf("GroupSender = %q", cfg.Selectors.GroupSender)
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[harvest]\nready_timeout = \"soon\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for bad duration")
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}

	cfg, err := LoadOrDefault("/nonexistent/config.toml")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.DefaultSession != "main" {
		t.Errorf("DefaultSession = %q, want main", cfg.DefaultSession)
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want BrowserConfig
		dir  string
	}{
		{"none", nil, BrowserConfig{URL: DefaultURL}, "downloads"},
		{"primary", map[string]string{EnvChromePath: "/opt/chrome", EnvProfileDir: "/p", EnvDownloads: "/d"}, BrowserConfig{URL: DefaultURL, ExecPath: "/opt/chrome", ProfileDir: "/p"}, "/d"},
		{"aliases", map[string]string{"DRIVER_PATH": "/usr/bin/chromium", "CHROME_PROFILE": "/legacy"}, BrowserConfig{URL: DefaultURL, ExecPath: "/usr/bin/chromium", ProfileDir: "/legacy"}, "downloads"},
		{"primary wins", map[string]string{EnvChromePath: "/a", "DRIVER_PATH": "/b"}, BrowserConfig{URL: DefaultURL, ExecPath: "/a"}, "downloads"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.ApplyEnv(func(k string) (string, bool) {
				v, ok := tt.env[k]
				return v, ok
			})
			if cfg.Browser != tt.want {
				t.Errorf("Browser = %+v, want %+v", cfg.Browser, tt.want)
			}
			if cfg.Media.Dir != tt.dir {
				t.Errorf("Media.Dir = %q, want %q", cfg.Media.Dir, tt.dir)
			}
		})
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("WAHARVEST_TEST_ENVFILE=from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("WAHARVEST_TEST_ENVFILE") })

	if err := LoadEnvFiles(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("WAHARVEST_TEST_ENVFILE"); got != "from-file" {
		t.Errorf("env = %q, want from-file", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Harvest.ScrollPages = 50
	cfg.Media.Concurrency = 0
	cfg.Harvest.MaxChats = -1
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Harvest.ScrollPages != harvest.MaxScrollPages {
		t.Errorf("ScrollPages = %d, want %d", cfg.Harvest.ScrollPages, harvest.MaxScrollPages)
	}
	if cfg.Media.Concurrency != 1 || cfg.Harvest.MaxChats != 0 {
		t.Errorf("concurrency=%d max_chats=%d", cfg.Media.Concurrency, cfg.Harvest.MaxChats)
	}

	cfg.Harvest.Mode = "everything"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for unknown mode")
	}
}

func TestHarvestOptions(t *testing.T) {
	cfg := Default()
	opts := cfg.HarvestOptions("")
	if opts != harvest.DefaultOptions() {
		t.Errorf("HarvestOptions() = %+v, want defaults", opts)
	}
	if got := cfg.HarvestOptions(harvest.ModeThreads).Mode; got != harvest.ModeThreads {
		t.Errorf("Mode = %q, want threads", got)
	}
}
