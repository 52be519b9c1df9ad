// Package config loads the harvester configuration from
// ~/.waharvest/config.toml, .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/matheus3301/waharvest/internal/classify"
	"github.com/matheus3301/waharvest/internal/harvest"
	"github.com/matheus3301/waharvest/internal/page"
)

// Environment variables that override file values. The legacy names are
// accepted as aliases.
const (
	EnvChromePath    = "WAHARVEST_CHROME_PATH"
	EnvProfileDir    = "WAHARVEST_PROFILE_DIR"
	EnvDownloads     = "WAHARVEST_DOWNLOADS"
	EnvSession       = "WAHARVEST_SESSION"
	envDriverPath    = "DRIVER_PATH"
	envChromeProfile = "CHROME_PROFILE"
)

// DefaultURL is the web client the browser opens.
const DefaultURL = "https://web.whatsapp.com"

// Config represents the global ~/.waharvest/config.toml.
type Config struct {
	DefaultSession string           `toml:"default_session"`
	Harvest        HarvestConfig    `toml:"harvest"`
	Media          MediaConfig      `toml:"media"`
	Browser        BrowserConfig    `toml:"browser"`
	Report         ReportConfig     `toml:"report"`
	Lexicon        classify.Lexicon `toml:"lexicon"`
	Selectors      page.Selectors   `toml:"selectors"`
}

// HarvestConfig holds the caps and waits of a run.
type HarvestConfig struct {
	Mode           string   `toml:"mode"`
	MaxChats       int      `toml:"max_chats"`
	MaxThreadChats int      `toml:"max_thread_chats"`
	MaxMessages    int      `toml:"max_messages"`
	ScrollPages    int      `toml:"scroll_pages"`
	ScrollSettle   Duration `toml:"scroll_settle"`
	ReadyTimeout   Duration `toml:"ready_timeout"`
	ThreadTimeout  Duration `toml:"thread_timeout"`
}

// MediaConfig controls attachment downloads.
type MediaConfig struct {
	Dir         string   `toml:"dir"`
	Concurrency int      `toml:"concurrency"`
	HTTPTimeout Duration `toml:"http_timeout"`
}

// BrowserConfig describes the Chrome instance. An empty ProfileDir means the
// session's own profile directory.
type BrowserConfig struct {
	URL        string `toml:"url"`
	ExecPath   string `toml:"exec_path"`
	Headless   bool   `toml:"headless"`
	ProfileDir string `toml:"profile_dir"`
}

// ReportConfig controls terminal output.
type ReportConfig struct {
	Rows int `toml:"rows"`
}

// Duration is a time.Duration written as "1.5s" in TOML.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("duration %q: %w", b, err)
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := harvest.DefaultOptions()
	return &Config{
		DefaultSession: "main",
		Harvest: HarvestConfig{
			Mode:           string(opts.Mode),
			MaxChats:       opts.MaxChats,
			MaxThreadChats: opts.MaxThreadChats,
			MaxMessages:    opts.MaxMessages,
			ScrollPages:    opts.ScrollPages,
			ScrollSettle:   Duration{opts.ScrollSettle},
			ReadyTimeout:   Duration{opts.ReadyTimeout},
			ThreadTimeout:  Duration{opts.ThreadTimeout},
		},
		Media: MediaConfig{
			Dir:         opts.MediaDir,
			Concurrency: opts.MediaConcurrency,
			HTTPTimeout: Duration{30 * time.Second},
		},
		Browser:   BrowserConfig{URL: DefaultURL},
		Report:    ReportConfig{Rows: 5},
		Lexicon:   classify.DefaultLexicon(),
		Selectors: page.DefaultSelectors(),
	}
}

// Load reads config from the given path on top of the defaults. Returns an
// error if the file is missing.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.Selectors = cfg.Selectors.WithDefaults()
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := Write(f, cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg *Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// LoadEnvFiles loads the given .env files into the process environment.
// Missing files are skipped and variables already set are kept.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides file values with environment variables. lookup is
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	first := func(keys ...string) (string, bool) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				return v, true
			}
		}
		return "", false
	}
	if v, ok := first(EnvChromePath, envDriverPath); ok {
		c.Browser.ExecPath = v
	}
	if v, ok := first(EnvProfileDir, envChromeProfile); ok {
		c.Browser.ProfileDir = v
	}
	if v, ok := first(EnvDownloads); ok {
		c.Media.Dir = v
	}
	if v, ok := first(EnvSession); ok {
		c.DefaultSession = v
	}
}

// Validate rejects unknown modes and clamps every cap into range.
func (c *Config) Validate() error {
	if c.Harvest.Mode == "" {
		c.Harvest.Mode = string(harvest.ModeSummary)
	}
	if _, err := harvest.ParseMode(c.Harvest.Mode); err != nil {
		return fmt.Errorf("harvest.mode: %w", err)
	}
	c.Harvest.MaxChats = max(c.Harvest.MaxChats, 0)
	c.Harvest.MaxThreadChats = max(c.Harvest.MaxThreadChats, 0)
	c.Harvest.MaxMessages = max(c.Harvest.MaxMessages, 0)
	c.Harvest.ScrollPages = min(max(c.Harvest.ScrollPages, 0), harvest.MaxScrollPages)
	c.Media.Concurrency = max(c.Media.Concurrency, 1)
	if c.Media.Dir == "" {
		c.Media.Dir = harvest.DefaultOptions().MediaDir
	}
	if c.Browser.URL == "" {
		c.Browser.URL = DefaultURL
	}
	if c.Report.Rows <= 0 {
		c.Report.Rows = 5
	}
	c.Selectors = c.Selectors.WithDefaults()
	return nil
}

// HarvestOptions converts the configuration into pipeline options for mode.
// An empty mode uses the configured one.
func (c *Config) HarvestOptions(mode harvest.Mode) harvest.Options {
	if mode == "" {
		mode = harvest.Mode(c.Harvest.Mode)
	}
	return harvest.Options{
		Mode:             mode,
		MaxChats:         c.Harvest.MaxChats,
		MaxThreadChats:   c.Harvest.MaxThreadChats,
		MaxMessages:      c.Harvest.MaxMessages,
		ScrollPages:      c.Harvest.ScrollPages,
		ScrollSettle:     c.Harvest.ScrollSettle.Duration,
		ReadyTimeout:     c.Harvest.ReadyTimeout.Duration,
		ThreadTimeout:    c.Harvest.ThreadTimeout.Duration,
		MediaDir:         c.Media.Dir,
		MediaConcurrency: c.Media.Concurrency,
	}
}
