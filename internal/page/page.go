// Package page defines the query surface the harvester needs from a rendered
// chat client document. Implementations live in internal/browser (live Chrome)
// and internal/page/snapshot (saved HTML).
package page

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout is returned when a bounded wait expires before the descriptor matched.
	ErrTimeout = errors.New("page: wait timed out")
	// ErrNotFound is returned when a lookup matched nothing.
	ErrNotFound = errors.New("page: element not found")
	// ErrSessionClosed means the underlying document is gone and no further
	// query can succeed.
	ErrSessionClosed = errors.New("page: session closed")
)

// Element is an opaque handle to a rendered node. It is only meaningful to the
// Page that returned it.
type Element any

// Page is the query adapter consumed by the extractor and the orchestrator.
// A nil root means the whole document. Text returns the raw textContent.
type Page interface {
	WaitFor(ctx context.Context, descriptor string, timeout time.Duration) (Element, error)
	FindAll(ctx context.Context, root Element, descriptor string) ([]Element, error)
	Attr(ctx context.Context, el Element, name string) (string, bool, error)
	Text(ctx context.Context, el Element) (string, error)
	Click(ctx context.Context, el Element) error
	ScrollToTop(ctx context.Context, el Element) error
}

// Session is a Page that can also report readiness and be released.
type Session interface {
	Page
	Ready(ctx context.Context, timeout time.Duration) bool
	Close() error
}

// First returns the first element under root matching descriptor.
func First(ctx context.Context, p Page, root Element, descriptor string) (Element, error) {
	els, err := p.FindAll(ctx, root, descriptor)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%q: %w", descriptor, ErrNotFound)
	}
	return els[0], nil
}

// IsFatal reports whether err means the harvest cannot continue.
func IsFatal(err error) bool {
	return errors.Is(err, ErrSessionClosed) || errors.Is(err, context.Canceled)
}
