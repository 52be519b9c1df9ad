// Package media downloads chat attachments to a deterministic per-chat layout:
// {root}/{sanitized chat name}/{kind}_{row}_{item}.{ext}.
package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const chunkSize = 32 << 10

// Fetcher streams assets from a Source to disk. A failed asset never affects
// its siblings.
type Fetcher struct {
	source Source
	logger *zap.Logger
}

// NewFetcher creates a fetcher reading from source.
func NewFetcher(source Source, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{source: source, logger: logger}
}

// Fetch writes the bytes behind locator to dest. The body is copied in
// bounded chunks into a temporary file next to dest and renamed over it, so a
// re-run overwrites and a failed run leaves no partial file. Panics inside a
// Source are reported as errors.
func (f *Fetcher) Fetch(ctx context.Context, locator, dest string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch %s: panic: %v", locator, r)
		}
	}()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}

	body, err := f.source.Open(ctx, locator)
	if err != nil {
		return fmt.Errorf("open %s: %w", locator, err)
	}
	defer func() { _ = body.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(onlyWriter{tmp}, body, buf); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dest, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("rename %s: %w", dest, err)
	}
	return nil
}

// onlyWriter hides ReadFrom so io.CopyBuffer uses the caller's buffer.
type onlyWriter struct {
	w io.Writer
}

func (o onlyWriter) Write(p []byte) (int, error) {
	return o.w.Write(p)
}

// Job is one asset to fetch.
type Job struct {
	Locator string
	Dest    string
}

// Result is the outcome of one Job. Err is nil on success.
type Result struct {
	Dest string
	Err  error
}

// FetchAll runs jobs with at most concurrency fetches in flight. Results are
// indexed like jobs regardless of completion order.
func (f *Fetcher) FetchAll(ctx context.Context, jobs []Job, concurrency int) []Result {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]Result, len(jobs))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, job := range jobs {
		g.Go(func() error {
			err := f.Fetch(ctx, job.Locator, job.Dest)
			if err != nil {
				f.logger.Warn("media fetch failed",
					zap.String("locator", job.Locator),
					zap.String("path", job.Dest),
					zap.Error(err))
			} else {
				f.logger.Debug("media saved", zap.String("path", job.Dest))
			}
			results[i] = Result{Dest: job.Dest, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
