// Package snapshot implements page.Session over a saved HTML document.
//
// A saved WhatsApp Web page holds a single open thread. To harvest several
// threads offline, a snapshot may carry one thread container per chat marked
// with data-chat="<chat name>"; clicking a chat row then scopes later waits to
// the container of that chat.
package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/matheus3301/waharvest/internal/page"
)

const chatAttr = "data-chat"

// Document is a static page.Session. It never changes after parsing, so waits
// either match immediately or time out immediately.
type Document struct {
	doc      *goquery.Document
	nameSel  string
	nameAttr string
	readySel string
	active   string
	closed   bool

	clicks  []string
	scrolls int
}

// Option customises a Document.
type Option func(*Document)

// WithChatName sets how a clicked row resolves to a chat name.
func WithChatName(descriptor, attr string) Option {
	return func(d *Document) {
		d.nameSel = descriptor
		d.nameAttr = attr
	}
}

// WithReadyDescriptor sets the descriptor Ready looks for.
func WithReadyDescriptor(descriptor string) Option {
	return func(d *Document) {
		d.readySel = descriptor
	}
}

// Open parses the HTML file at path.
func Open(path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Parse(bytes.NewReader(data), opts...)
}

// Parse builds a Document from HTML.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	sel := page.DefaultSelectors()
	d := &Document{doc: doc, nameSel: sel.ChatName, nameAttr: sel.ChatNameAttr, readySel: sel.ChatPane}
	for _, o := range opts {
		o(d)
	}
	return d, nil
}

// ParseString is Parse over a string.
func ParseString(html string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(html), opts...)
}

// WaitFor returns the first match of descriptor, preferring matches inside
// the container of the last clicked chat.
func (d *Document) WaitFor(ctx context.Context, descriptor string, _ time.Duration) (page.Element, error) {
	if err := d.check(ctx); err != nil {
		return nil, err
	}
	matches := d.doc.Find(descriptor)
	if matches.Length() == 0 {
		return nil, fmt.Errorf("%q: %w", descriptor, page.ErrTimeout)
	}
	if d.active == "" {
		return matches.First(), nil
	}

	var scoped, unscoped *goquery.Selection
	matches.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		owner := s.Closest("[" + chatAttr + "]")
		if owner.Length() == 0 {
			if unscoped == nil {
				unscoped = s
			}
			return true
		}
		if name, _ := owner.Attr(chatAttr); name == d.active {
			scoped = s
			return false
		}
		return true
	})
	switch {
	case scoped != nil:
		return scoped, nil
	case unscoped != nil:
		return unscoped, nil
	default:
		return nil, fmt.Errorf("%q for chat %q: %w", descriptor, d.active, page.ErrTimeout)
	}
}

// FindAll returns every match of descriptor under root in document order.
func (d *Document) FindAll(ctx context.Context, root page.Element, descriptor string) ([]page.Element, error) {
	if err := d.check(ctx); err != nil {
		return nil, err
	}
	base := d.doc.Selection
	if root != nil {
		s, err := selection(root)
		if err != nil {
			return nil, err
		}
		base = s
	}
	found := base.Find(descriptor)
	els := make([]page.Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		els = append(els, s)
	})
	return els, nil
}

// Attr reads an attribute of el.
func (d *Document) Attr(ctx context.Context, el page.Element, name string) (string, bool, error) {
	if err := d.check(ctx); err != nil {
		return "", false, err
	}
	s, err := selection(el)
	if err != nil {
		return "", false, err
	}
	v, ok := s.Attr(name)
	return v, ok, nil
}

// Text returns the trimmed text content of el.
func (d *Document) Text(ctx context.Context, el page.Element) (string, error) {
	if err := d.check(ctx); err != nil {
		return "", err
	}
	s, err := selection(el)
	if err != nil {
		return "", err
	}
	return s.Text(), nil
}

// Click marks the chat owning el as the open thread.
func (d *Document) Click(ctx context.Context, el page.Element) error {
	if err := d.check(ctx); err != nil {
		return err
	}
	s, err := selection(el)
	if err != nil {
		return err
	}
	name, ok := s.Attr(chatAttr)
	if !ok {
		name, ok = s.Find(d.nameSel).First().Attr(d.nameAttr)
	}
	if !ok || name == "" {
		return fmt.Errorf("click: row has no chat name: %w", page.ErrNotFound)
	}
	d.active = name
	d.clicks = append(d.clicks, name)
	return nil
}

// ScrollToTop is counted but has no effect on a static document.
func (d *Document) ScrollToTop(ctx context.Context, el page.Element) error {
	if err := d.check(ctx); err != nil {
		return err
	}
	if _, err := selection(el); err != nil {
		return err
	}
	d.scrolls++
	return nil
}

// Ready reports whether the document contains the chat pane.
func (d *Document) Ready(ctx context.Context, timeout time.Duration) bool {
	_, err := d.WaitFor(ctx, d.readySel, timeout)
	return err == nil
}

// Close makes every later call fail with page.ErrSessionClosed.
func (d *Document) Close() error {
	d.closed = true
	return nil
}

// Clicks returns the chat names clicked so far, in order.
func (d *Document) Clicks() []string {
	return append([]string(nil), d.clicks...)
}

// Scrolls returns how many times ScrollToTop was called.
func (d *Document) Scrolls() int {
	return d.scrolls
}

func (d *Document) check(ctx context.Context) error {
	if d.closed {
		return page.ErrSessionClosed
	}
	return ctx.Err()
}

func selection(el page.Element) (*goquery.Selection, error) {
	s, ok := el.(*goquery.Selection)
	if !ok || s == nil || s.Length() == 0 {
		return nil, fmt.Errorf("element %T: %w", el, page.ErrNotFound)
	}
	return s, nil
}
