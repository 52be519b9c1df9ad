package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/matheus3301/waharvest/internal/bus"
	"github.com/matheus3301/waharvest/internal/harvest"
	"github.com/matheus3301/waharvest/internal/page"
	"github.com/matheus3301/waharvest/internal/report"
	"github.com/matheus3301/waharvest/internal/status"
	"github.com/matheus3301/waharvest/internal/store"
	"go.uber.org/zap"
)

// ErrNotReady is returned when the chat list never rendered and the user
// chose not to retry.
var ErrNotReady = errors.New("whatsapp did not finish loading")

// Runner performs one harvest: readiness probe, pipeline run, archive and
// rendering.
type Runner struct {
	params   Params
	page     page.Session
	pipeline *harvest.Pipeline
	db       *store.DB
	bus      *bus.Bus
	logger   *zap.Logger
	printer  *report.Printer
}

// NewRunner creates a Runner.
func NewRunner(p Params, sess page.Session, pipeline *harvest.Pipeline, db *store.DB, b *bus.Bus, logger *zap.Logger) *Runner {
	return &Runner{
		params:   p,
		page:     sess,
		pipeline: pipeline,
		db:       db,
		bus:      b,
		logger:   logger,
		printer:  report.NewPrinter(p.Err),
	}
}

// Run harvests, archives and renders. The result is returned even when the
// run aborted.
func (r *Runner) Run(ctx context.Context) (*harvest.Result, error) {
	if err := r.waitReady(ctx); err != nil {
		return nil, err
	}

	events, unsubscribe := r.bus.Subscribe("harvest.", 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for evt := range events {
			r.progress(evt)
		}
	}()

	res, runErr := r.pipeline.Run(ctx)
	unsubscribe()
	wg.Wait()

	run, chats := store.FromResult(r.params.SessionName, res, runErr)
	if err := r.db.SaveRun(run, chats); err != nil {
		r.logger.Error("archive failed", zap.String("run", run.ID), zap.Error(err))
		r.printer.Warn("Could not archive run %s: %v", run.ID, err)
	} else {
		r.logger.Info("run archived", zap.String("run", run.ID), zap.Int("chats", run.ChatCount))
	}

	if err := r.render(res); err != nil {
		return res, errors.Join(runErr, fmt.Errorf("render: %w", err))
	}
	if runErr != nil {
		r.printer.Error("Harvest aborted: %v", runErr)
	}
	return res, runErr
}

func (r *Runner) render(res *harvest.Result) error {
	out := r.params.Out
	if r.params.JSON {
		return report.JSON(out, res)
	}
	if res.Mode == harvest.ModeThreads {
		return report.Threads(out, res.Threads)
	}
	return report.Summaries(out, res.Summaries, r.params.Config.Report.Rows)
}

// waitReady probes for the chat list. When interactive, a failed probe asks
// whether to wait again.
func (r *Runner) waitReady(ctx context.Context) error {
	timeout := r.params.Config.Harvest.ReadyTimeout.Duration
	r.printer.Progress("Running Whatsapp...")
	in := bufio.NewReader(r.params.In)
	for {
		if r.page.Ready(ctx, timeout) {
			r.printer.Success("Success! WhatsApp finished loading and is ready.")
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		r.logger.Warn("chat list not rendered", zap.Duration("timeout", timeout))
		r.printer.Error("Error: WhatsApp failed to load within %d seconds. Make sure you are logged in and try again.", int(timeout.Seconds()))
		if !r.params.Interactive {
			return ErrNotReady
		}
		retry, err := r.askRetry(in)
		if err != nil || !retry {
			return ErrNotReady
		}
	}
}

// askRetry asks until it gets a yes or a no.
func (r *Runner) askRetry(in *bufio.Reader) (bool, error) {
	for {
		r.printer.Prompt("Proceed  Yes(Y) or No(N) ?")
		line, err := in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
	}
}

func (r *Runner) progress(evt bus.Event) {
	switch v := evt.Payload.(type) {
	case harvest.RunProgress:
		if evt.Kind == bus.KindRunStarted {
			r.printer.Progress("Loading your chats...")
			return
		}
		c := v.Counts
		if v.Mode == harvest.ModeThreads {
			r.printer.Success("Harvested %d chats (%d failed), %d messages, %d/%d media saved.", c.Chats, c.Failed, c.Messages, c.Stored, c.Media)
		} else {
			r.printer.Success("Harvested %d chats.", c.Chats)
		}
	case status.Change:
		switch v.To {
		case status.Opening:
			r.printer.Progress("Opening %s...", v.Chat)
		case status.Failed:
			r.printer.Warn("%s did not open in time, skipped.", v.Chat)
		}
	case harvest.MediaProgress:
		if v.Err != nil {
			r.printer.Warn("Could not save media for %s: %v", v.Chat, v.Err)
		}
	}
}
