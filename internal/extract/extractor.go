// Package extract projects chat-list and thread rows into raw field tuples.
// Every field degrades to a default on its own; only a fatal page error stops
// extraction.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/matheus3301/waharvest/internal/media"
	"github.com/matheus3301/waharvest/internal/page"
	"go.uber.org/zap"
)

// UnknownName is used when a chat row has no readable name.
const UnknownName = "Unknown"

// Summary is the raw content of one chat-list row.
type Summary struct {
	Name        string
	LastMessage string
	TimeLabel   string
	HasUnread   bool
	HasSender   bool
}

// MediaRef is a media element found in a message row.
type MediaRef struct {
	Kind    media.Kind
	Locator string
}

// Message is the raw content of one thread row. Row is the position of the
// row inside the extracted window and is stable for file naming.
type Message struct {
	Row   int
	Text  string
	Media []MediaRef
}

// Extractor reads rows through a page.Page.
type Extractor struct {
	page   page.Page
	sel    page.Selectors
	logger *zap.Logger
}

// New creates an extractor. Empty selectors fall back to the defaults.
func New(p page.Page, sel page.Selectors, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{page: p, sel: sel.WithDefaults(), logger: logger}
}

// Summaries extracts at most n rows in order. Every row yields a Summary;
// a row that faults unexpectedly is skipped.
func (x *Extractor) Summaries(ctx context.Context, rows []page.Element, n int) ([]Summary, error) {
	if n < len(rows) {
		rows = rows[:max(n, 0)]
	}
	out := make([]Summary, 0, len(rows))
	for i, row := range rows {
		s, err := guard(x.logger, i, func() (Summary, error) { return x.Summary(ctx, row) })
		if err != nil {
			if page.IsFatal(err) {
				return out, err
			}
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Summary extracts one chat row. The only error it returns is fatal.
func (x *Extractor) Summary(ctx context.Context, row page.Element) (Summary, error) {
	name := x.attr(ctx, row, x.sel.ChatName, x.sel.ChatNameAttr)
	last := x.text(ctx, row, x.sel.LastMessage)
	label := x.text(ctx, row, x.sel.TimeLabel)
	unread := x.present(ctx, row, x.sel.UnreadBadge)
	sender := x.present(ctx, row, x.sel.GroupSender)
	if err := fatal(name.Err, last.Err, label.Err, unread.Err, sender.Err); err != nil {
		return Summary{}, err
	}

	s := Summary{
		Name:        name.Or(UnknownName),
		LastMessage: last.Or(""),
		TimeLabel:   label.Or(""),
		HasUnread:   unread.Or(false),
		HasSender:   sender.Or(false),
	}
	if s.Name == "" {
		s.Name = UnknownName
	}
	return s, nil
}

// Messages extracts the last k rows. Rows with neither text nor media are
// dropped; a row that faults unexpectedly is skipped.
func (x *Extractor) Messages(ctx context.Context, rows []page.Element, k int) ([]Message, error) {
	if k < len(rows) {
		rows = rows[len(rows)-max(k, 0):]
	}
	out := make([]Message, 0, len(rows))
	for i, row := range rows {
		m, err := guard(x.logger, i, func() (Message, error) { return x.Message(ctx, row, i) })
		if err != nil {
			if page.IsFatal(err) {
				return out, err
			}
			continue
		}
		if m.Text == "" && len(m.Media) == 0 {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Message extracts one thread row at position idx.
func (x *Extractor) Message(ctx context.Context, row page.Element, idx int) (Message, error) {
	text := x.text(ctx, row, x.sel.MessageText)
	images := x.refs(ctx, row, x.sel.Image, media.Image)
	videos := x.refs(ctx, row, x.sel.Video, media.Video)
	if err := fatal(text.Err, images.Err, videos.Err); err != nil {
		return Message{}, err
	}

	refs := append(images.Or(nil), videos.Or(nil)...)
	return Message{Row: idx, Text: text.Or(""), Media: refs}, nil
}

func (x *Extractor) attr(ctx context.Context, root page.Element, descriptor, name string) Field[string] {
	return Read(func() (string, error) {
		el, err := page.First(ctx, x.page, root, descriptor)
		if err != nil {
			return "", err
		}
		v, ok, err := x.page.Attr(ctx, el, name)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("attribute %q: %w", name, page.ErrNotFound)
		}
		return v, nil
	})
}

func (x *Extractor) text(ctx context.Context, root page.Element, descriptor string) Field[string] {
	return Read(func() (string, error) {
		el, err := page.First(ctx, x.page, root, descriptor)
		if err != nil {
			return "", err
		}
		s, err := x.page.Text(ctx, el)
		return strings.TrimSpace(s), err
	})
}

func (x *Extractor) present(ctx context.Context, root page.Element, descriptor string) Field[bool] {
	return Read(func() (bool, error) {
		if descriptor == "" {
			return false, nil
		}
		els, err := x.page.FindAll(ctx, root, descriptor)
		if err != nil {
			return false, err
		}
		return len(els) > 0, nil
	})
}

// refs reads the source of every media element; elements without one are skipped.
func (x *Extractor) refs(ctx context.Context, root page.Element, descriptor string, kind media.Kind) Field[[]MediaRef] {
	return Read(func() ([]MediaRef, error) {
		els, err := x.page.FindAll(ctx, root, descriptor)
		if err != nil {
			return nil, err
		}
		var out []MediaRef
		for _, el := range els {
			src, ok, err := x.page.Attr(ctx, el, x.sel.MediaAttr)
			if err != nil {
				if page.IsFatal(err) {
					return nil, err
				}
				continue
			}
			if ok && src != "" {
				out = append(out, MediaRef{Kind: kind, Locator: src})
			}
		}
		return out, nil
	})
}

// guard runs one row and converts a panic into a skipped row.
func guard[T any](logger *zap.Logger, idx int, fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("row skipped", zap.Int("row", idx), zap.Any("panic", r))
			err = fmt.Errorf("row %d: panic: %v", idx, r)
		}
	}()
	return fn()
}
