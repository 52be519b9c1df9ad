package harvest

import "time"

// MaxScrollPages bounds history loading per chat whatever the configuration says.
const MaxScrollPages = 10

// Options are the caps and waits for one run.
type Options struct {
	Mode             Mode
	MaxChats         int
	MaxThreadChats   int
	MaxMessages      int
	ScrollPages      int
	ScrollSettle     time.Duration
	ReadyTimeout     time.Duration
	ThreadTimeout    time.Duration
	MediaDir         string
	MediaConcurrency int
}

// DefaultOptions returns the caps the original scraper used.
func DefaultOptions() Options {
	return Options{
		Mode:             ModeSummary,
		MaxChats:         20,
		MaxThreadChats:   3,
		MaxMessages:      20,
		ScrollPages:      3,
		ScrollSettle:     1500 * time.Millisecond,
		ReadyTimeout:     20 * time.Second,
		ThreadTimeout:    10 * time.Second,
		MediaDir:         "downloads",
		MediaConcurrency: 4,
	}
}

// normalized clamps every cap into its allowed range.
func (o Options) normalized() Options {
	if o.Mode == "" {
		o.Mode = ModeSummary
	}
	o.MaxChats = max(o.MaxChats, 0)
	o.MaxThreadChats = max(o.MaxThreadChats, 0)
	o.MaxMessages = max(o.MaxMessages, 0)
	o.ScrollPages = min(max(o.ScrollPages, 0), MaxScrollPages)
	o.MediaConcurrency = max(o.MediaConcurrency, 1)
	if o.MediaDir == "" {
		o.MediaDir = "downloads"
	}
	return o
}
