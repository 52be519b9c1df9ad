// Package browser drives a live Chrome session over the DevTools protocol and
// exposes it as a page.Session.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/matheus3301/waharvest/internal/page"
	"go.uber.org/zap"
)

// Options describe the Chrome instance to start.
type Options struct {
	URL        string
	ExecPath   string
	ProfileDir string
	Headless   bool

	// ReadyDescriptor is what Ready waits for; the chat pane by default.
	ReadyDescriptor string
	// NavigateTimeout bounds the initial page load.
	NavigateTimeout time.Duration
}

// Session is a Chrome tab pointed at the chat client.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	readySel    string
	logger      *zap.Logger
}

var _ page.Session = (*Session)(nil)

// Open starts Chrome with the given profile and navigates to opts.URL.
// The profile keeps the login, so a previously linked device opens straight
// into the chat list.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	alloc := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(1280, 900),
	)
	if opts.ExecPath != "" {
		alloc = append(alloc, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.ProfileDir != "" {
		alloc = append(alloc, chromedp.UserDataDir(opts.ProfileDir))
	}

	// The browser outlives the ctx passed to Open; Close releases it.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), alloc...)
	tabCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Sugar().Debugf),
		chromedp.WithErrorf(logger.Sugar().Debugf),
	)
	s := &Session{ctx: tabCtx, cancel: cancel, allocCancel: allocCancel, readySel: opts.ReadyDescriptor, logger: logger}
	if s.readySel == "" {
		s.readySel = page.DefaultSelectors().ChatPane
	}

	timeout := opts.NavigateTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	logger.Info("opening browser",
		zap.String("url", opts.URL),
		zap.String("profile", opts.ProfileDir),
		zap.Bool("headless", opts.Headless))
	// The first Run starts the browser and must not carry a deadline, or the
	// deadline would kill it.
	if err := chromedp.Run(tabCtx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	if err := s.run(ctx, timeout, chromedp.Navigate(opts.URL)); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("navigate %s: %w", opts.URL, err)
	}
	return s, nil
}

// WaitFor blocks until descriptor matches or timeout expires.
func (s *Session) WaitFor(ctx context.Context, descriptor string, timeout time.Duration) (page.Element, error) {
	var nodes []*cdp.Node
	if err := s.run(ctx, timeout, chromedp.Nodes(descriptor, &nodes, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("wait for %q: %w", descriptor, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("wait for %q: %w", descriptor, page.ErrTimeout)
	}
	return nodes[0], nil
}

// FindAll returns every match under root without waiting.
func (s *Session) FindAll(ctx context.Context, root page.Element, descriptor string) ([]page.Element, error) {
	opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	if root != nil {
		n, err := node(root)
		if err != nil {
			return nil, err
		}
		opts = append(opts, chromedp.FromNode(n))
	}
	var nodes []*cdp.Node
	if err := s.run(ctx, 0, chromedp.Nodes(descriptor, &nodes, opts...)); err != nil {
		return nil, fmt.Errorf("find %q: %w", descriptor, err)
	}
	els := make([]page.Element, len(nodes))
	for i, n := range nodes {
		els[i] = n
	}
	return els, nil
}

// Attr reads a live attribute value.
func (s *Session) Attr(ctx context.Context, el page.Element, name string) (string, bool, error) {
	n, err := node(el)
	if err != nil {
		return "", false, err
	}
	var (
		value string
		ok    bool
	)
	err = s.run(ctx, 0, chromedp.AttributeValue([]cdp.NodeID{n.NodeID}, name, &value, &ok, chromedp.ByNodeID))
	if err != nil {
		return "", false, fmt.Errorf("attr %s: %w", name, err)
	}
	return value, ok, nil
}

// Text returns the text content of el.
func (s *Session) Text(ctx context.Context, el page.Element) (string, error) {
	n, err := node(el)
	if err != nil {
		return "", err
	}
	var text string
	if err := s.run(ctx, 0, chromedp.TextContent([]cdp.NodeID{n.NodeID}, &text, chromedp.ByNodeID)); err != nil {
		return "", fmt.Errorf("text: %w", err)
	}
	return text, nil
}

// Click dispatches a left click at the centre of el.
func (s *Session) Click(ctx context.Context, el page.Element) error {
	n, err := node(el)
	if err != nil {
		return err
	}
	if err := s.run(ctx, 0, chromedp.MouseClickNode(n)); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

// ScrollToTop sets el.scrollTop to 0, which makes the client load older history.
func (s *Session) ScrollToTop(ctx context.Context, el page.Element) error {
	n, err := node(el)
	if err != nil {
		return err
	}
	if err := s.run(ctx, 0, chromedp.SetJavascriptAttribute([]cdp.NodeID{n.NodeID}, "scrollTop", "0", chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	return nil
}

// Ready reports whether the chat list rendered within timeout, i.e. the
// profile is logged in.
func (s *Session) Ready(ctx context.Context, timeout time.Duration) bool {
	_, err := s.WaitFor(ctx, s.readySel, timeout)
	return err == nil
}

// Close shuts the browser down. Safe to call more than once.
func (s *Session) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancel()
	s.allocCancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// run executes actions inside the browser context, bounded by timeout when
// positive and cancelled together with ctx.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := s.ctx.Err(); err != nil {
		return page.ErrSessionClosed
	}
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	return s.mapErr(ctx, runCtx, err)
}

// mapErr translates context failures into the page error taxonomy.
func (s *Session) mapErr(caller, run context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case caller.Err() != nil:
		return caller.Err()
	case s.ctx.Err() != nil:
		return page.ErrSessionClosed
	case errors.Is(run.Err(), context.DeadlineExceeded):
		return page.ErrTimeout
	}
	return err
}

func node(el page.Element) (*cdp.Node, error) {
	n, ok := el.(*cdp.Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("element %T is not a browser node: %w", el, page.ErrNotFound)
	}
	return n, nil
}
