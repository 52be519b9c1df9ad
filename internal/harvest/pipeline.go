// Package harvest orchestrates a harvest run: it walks the chat list, opens
// threads when asked to, classifies every chat and downloads attachments.
//
// A run never stops for a bad field, row, asset or a thread that does not
// open in time. It stops only when the page reports a fatal error, and then
// returns what it assembled together with that error.
package harvest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/waharvest/internal/bus"
	"github.com/matheus3301/waharvest/internal/classify"
	"github.com/matheus3301/waharvest/internal/extract"
	"github.com/matheus3301/waharvest/internal/media"
	"github.com/matheus3301/waharvest/internal/page"
	"github.com/matheus3301/waharvest/internal/status"
	"go.uber.org/zap"
)

// Deps are the collaborators of a Pipeline. Fetcher may be nil, in which case
// media is reported but never downloaded.
type Deps struct {
	Page      page.Page
	Engine    *classify.Engine
	Fetcher   *media.Fetcher
	Bus       *bus.Bus
	Logger    *zap.Logger
	Selectors page.Selectors
}

// Pipeline runs harvests over one page.
type Pipeline struct {
	page      page.Page
	extractor *extract.Extractor
	engine    *classify.Engine
	fetcher   *media.Fetcher
	bus       *bus.Bus
	logger    *zap.Logger
	sel       page.Selectors
	opts      Options

	sleep func(context.Context, time.Duration) error
	newID func() string
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithSleep replaces the settle delay used between history loads.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(p *Pipeline) { p.sleep = fn }
}

// WithRunID replaces the run id generator.
func WithRunID(fn func() string) Option {
	return func(p *Pipeline) { p.newID = fn }
}

// New creates a pipeline.
func New(d Deps, opts Options, options ...Option) *Pipeline {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := d.Engine
	if engine == nil {
		engine = classify.New(classify.DefaultLexicon())
	}
	sel := d.Selectors.WithDefaults()
	p := &Pipeline{
		page:      d.Page,
		extractor: extract.New(d.Page, sel, logger),
		engine:    engine,
		fetcher:   d.Fetcher,
		bus:       d.Bus,
		logger:    logger,
		sel:       sel,
		opts:      opts.normalized(),
		sleep:     sleepCtx,
		newID:     uuid.NewString,
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// RunProgress is the payload of run start and finish events.
type RunProgress struct {
	RunID  string
	Mode   Mode
	Counts Counts
	Err    error
}

// ChatProgress is published when a chat is reached.
type ChatProgress struct {
	Index int
	Name  string
}

// MediaProgress is published for every attempted asset.
type MediaProgress struct {
	Chat string
	Path string
	Err  error
}

// Run performs one harvest in the configured mode.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: p.newID(), Mode: p.opts.Mode, StartedAt: time.Now()}
	logger := p.logger.With(zap.String("run", res.RunID), zap.String("mode", string(res.Mode)))
	logger.Info("harvest started")
	p.bus.Emit(bus.KindRunStarted, RunProgress{RunID: res.RunID, Mode: res.Mode})

	var err error
	switch p.opts.Mode {
	case ModeThreads:
		err = p.runThreads(ctx, res, logger)
	default:
		err = p.runSummary(ctx, res)
	}
	res.FinishedAt = time.Now()

	counts := res.Counts()
	p.bus.Emit(bus.KindRunFinished, RunProgress{RunID: res.RunID, Mode: res.Mode, Counts: counts, Err: err})
	fields := []zap.Field{
		zap.Int("chats", counts.Chats),
		zap.Int("failed", counts.Failed),
		zap.Int("messages", counts.Messages),
		zap.Int("media", counts.Media),
		zap.Int("stored", counts.Stored),
		zap.Duration("took", res.FinishedAt.Sub(res.StartedAt)),
	}
	if err != nil {
		logger.Error("harvest aborted", append(fields, zap.Error(err))...)
	} else {
		logger.Info("harvest finished", fields...)
	}
	return res, err
}

func (p *Pipeline) runSummary(ctx context.Context, res *Result) error {
	pane, err := p.page.WaitFor(ctx, p.sel.ChatPane, p.opts.ReadyTimeout)
	if err != nil {
		return fmt.Errorf("wait for chat pane: %w", err)
	}
	rows, err := p.page.FindAll(ctx, pane, p.sel.ChatRow)
	if err != nil {
		return fmt.Errorf("find chat rows: %w", err)
	}

	raws, err := p.extractor.Summaries(ctx, rows, p.opts.MaxChats)
	for i, raw := range raws {
		chat := p.summarize(raw, raw.HasSender)
		p.bus.Emit(bus.KindChat, ChatProgress{Index: i, Name: chat.Name})
		res.Summaries = append(res.Summaries, chat)
	}
	return err
}

func (p *Pipeline) runThreads(ctx context.Context, res *Result, logger *zap.Logger) error {
	pane, err := p.page.WaitFor(ctx, p.sel.ChatPane, p.opts.ReadyTimeout)
	if err != nil {
		return fmt.Errorf("wait for chat pane: %w", err)
	}

	for i := 0; i < p.opts.MaxThreadChats; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		// The list re-renders when a thread opens, so rows are looked up again.
		rows, err := p.page.FindAll(ctx, pane, p.sel.ChatRow)
		if err != nil {
			if page.IsFatal(err) {
				return fmt.Errorf("find chat rows: %w", err)
			}
			logger.Warn("chat rows unavailable", zap.Error(err))
			return nil
		}
		if i >= len(rows) {
			return nil
		}

		th, err := p.guardedThread(ctx, i, rows[i], logger)
		if th != nil {
			res.Threads = append(res.Threads, *th)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// guardedThread harvests one chat; a panic skips the chat.
func (p *Pipeline) guardedThread(ctx context.Context, idx int, row page.Element, logger *zap.Logger) (th *ChatThread, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("chat skipped", zap.Int("row", idx), zap.Any("panic", r))
			th, err = nil, nil
		}
	}()
	return p.thread(ctx, idx, row, logger)
}

func (p *Pipeline) thread(ctx context.Context, idx int, row page.Element, logger *zap.Logger) (*ChatThread, error) {
	raw, err := p.extractor.Summary(ctx, row)
	if err != nil {
		return nil, err
	}
	// Thread rows carry no sender signal, so groups are never detected here.
	chat := p.summarize(raw, false)
	th := &ChatThread{Chat: chat, Messages: []MessageRecord{}}
	logger = logger.With(zap.String("chat", chat.Name), zap.Int("row", idx))
	p.bus.Emit(bus.KindChat, ChatProgress{Index: idx, Name: chat.Name})

	m := status.NewMachine(chat.Name, idx, p.bus)
	_ = m.Transition(status.Opening)
	body, err := p.open(ctx, row)
	if err != nil {
		if page.IsFatal(err) {
			return nil, err
		}
		logger.Warn("thread did not open", zap.Error(err))
		_ = m.Transition(status.Failed)
		th.State = m.Current()
		return th, nil
	}
	_ = m.Transition(status.Loaded)

	if err := p.loadHistory(ctx, body, logger); err != nil {
		return nil, err
	}

	_ = m.Transition(status.Extracting)
	rows, err := p.page.FindAll(ctx, body, p.sel.MessageRow)
	if err != nil {
		if page.IsFatal(err) {
			return nil, err
		}
		logger.Warn("message rows unavailable", zap.Error(err))
		rows = nil
	}
	raws, err := p.extractor.Messages(ctx, rows, p.opts.MaxMessages)
	if err != nil {
		return nil, err
	}
	th.Messages = p.resolveMedia(ctx, chat.Name, raws)

	_ = m.Transition(status.Done)
	th.State = m.Current()
	logger.Debug("thread harvested", zap.Int("messages", len(th.Messages)))
	return th, nil
}

func (p *Pipeline) open(ctx context.Context, row page.Element) (page.Element, error) {
	if err := p.page.Click(ctx, row); err != nil {
		return nil, fmt.Errorf("click chat: %w", err)
	}
	if err := p.sleep(ctx, p.opts.ScrollSettle); err != nil {
		return nil, err
	}
	body, err := p.page.WaitFor(ctx, p.sel.ThreadBody, p.opts.ThreadTimeout)
	if err != nil {
		return nil, fmt.Errorf("wait for thread: %w", err)
	}
	return body, nil
}

// loadHistory scrolls the thread up a bounded number of times. Only fatal
// errors are returned.
func (p *Pipeline) loadHistory(ctx context.Context, body page.Element, logger *zap.Logger) error {
	if p.opts.ScrollPages == 0 {
		return nil
	}
	scroller, err := page.First(ctx, p.page, body, p.sel.ThreadScroller)
	if err != nil {
		if page.IsFatal(err) {
			return err
		}
		scroller = body
	}
	for i := 0; i < p.opts.ScrollPages; i++ {
		if err := p.page.ScrollToTop(ctx, scroller); err != nil {
			if page.IsFatal(err) {
				return err
			}
			logger.Debug("history load stopped", zap.Int("page", i), zap.Error(err))
			return nil
		}
		if err := p.sleep(ctx, p.opts.ScrollSettle); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) resolveMedia(ctx context.Context, chat string, raws []extract.Message) []MessageRecord {
	type slot struct{ msg, item int }

	records := make([]MessageRecord, len(raws))
	var jobs []media.Job
	var slots []slot
	for i, raw := range raws {
		rec := MessageRecord{Text: raw.Text}
		for j, ref := range raw.Media {
			rec.Media = append(rec.Media, MediaAsset{Kind: ref.Kind, SourceLocator: ref.Locator})
			jobs = append(jobs, media.Job{
				Locator: ref.Locator,
				Dest:    media.Path(p.opts.MediaDir, chat, ref.Kind, raw.Row, j),
			})
			slots = append(slots, slot{msg: i, item: j})
		}
		records[i] = rec
	}
	if len(jobs) == 0 || p.fetcher == nil {
		return records
	}

	for k, r := range p.fetcher.FetchAll(ctx, jobs, p.opts.MediaConcurrency) {
		s := slots[k]
		if r.Err == nil {
			records[s.msg].Media[s.item].StoredPath = r.Dest
		}
		p.bus.Emit(bus.KindMedia, MediaProgress{Chat: chat, Path: r.Dest, Err: r.Err})
	}
	return records
}

func (p *Pipeline) summarize(raw extract.Summary, hasSender bool) ChatSummary {
	return ChatSummary{
		Name:                 raw.Name,
		LastMessageText:      raw.LastMessage,
		LastMessageTimeLabel: raw.TimeLabel,
		HasUnread:            raw.HasUnread,
		Derived: p.engine.Classify(classify.Fields{
			Name:            raw.Name,
			Text:            raw.LastMessage,
			TimeLabel:       raw.TimeLabel,
			HasUnread:       raw.HasUnread,
			HasThreadSender: hasSender,
		}),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
