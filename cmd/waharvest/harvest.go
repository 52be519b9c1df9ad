package main

import (
	"context"

	"github.com/matheus3301/waharvest/internal/app"
	"github.com/matheus3301/waharvest/internal/harvest"
	"github.com/matheus3301/waharvest/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// harvestFlags override configuration for one run. Zero values keep the
// configured value.
type harvestFlags struct {
	snapshot    string
	maxChats    int
	maxMessages int
	scrollPages int
	mediaDir    string
	rows        int
	headless    bool
}

func (f *harvestFlags) register(cmd *cobra.Command, threads bool) {
	flags := cmd.Flags()
	flags.StringVar(&f.snapshot, "snapshot", "", "harvest a saved WhatsApp Web page instead of a live browser")
	flags.StringVar(&f.mediaDir, "media-dir", "", "download directory for media")
	flags.BoolVar(&f.headless, "headless", false, "run Chrome without a window (needs an existing login)")
	if threads {
		flags.IntVar(&f.maxChats, "max-chats", 0, "number of threads to open")
		flags.IntVar(&f.maxMessages, "max-messages", 0, "messages kept per thread")
		flags.IntVar(&f.scrollPages, "scroll-pages", 0, "history loads per thread (max 10)")
	} else {
		flags.IntVar(&f.maxChats, "max-chats", 0, "number of chats to read")
		flags.IntVar(&f.rows, "rows", 0, "chats shown in the table")
	}
}

func (f *harvestFlags) apply(cmd *cobra.Command, p *app.Params) error {
	cfg := p.Config
	changed := cmd.Flags().Changed
	if changed("max-chats") {
		if p.Mode == harvest.ModeThreads {
			cfg.Harvest.MaxThreadChats = f.maxChats
		} else {
			cfg.Harvest.MaxChats = f.maxChats
		}
	}
	if changed("max-messages") {
		cfg.Harvest.MaxMessages = f.maxMessages
	}
	if changed("scroll-pages") {
		cfg.Harvest.ScrollPages = f.scrollPages
	}
	if changed("rows") {
		cfg.Report.Rows = f.rows
	}
	if f.mediaDir != "" {
		cfg.Media.Dir = f.mediaDir
	}
	if changed("headless") {
		cfg.Browser.Headless = f.headless
	}
	p.Snapshot = f.snapshot
	return cfg.Validate()
}

func newSummaryCmd(g *globals) *cobra.Command {
	f := &harvestFlags{}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Read and classify the most recent chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHarvest(cmd, g, f, harvest.ModeSummary)
		},
	}
	f.register(cmd, false)
	return cmd
}

func newThreadsCmd(g *globals) *cobra.Command {
	f := &harvestFlags{}
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "Open the most recent chats and collect their messages and media",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHarvest(cmd, g, f, harvest.ModeThreads)
		},
	}
	f.register(cmd, true)
	return cmd
}

func runHarvest(cmd *cobra.Command, g *globals, f *harvestFlags, mode harvest.Mode) error {
	p := g.params(cmd)
	p.Mode = mode
	if err := f.apply(cmd, &p); err != nil {
		return err
	}

	var runner *app.Runner
	fxApp := fx.New(
		app.Core(p),
		app.Harvest(),
		app.FxLogger(),
		fx.Populate(&runner),
	)
	if err := fxApp.Err(); err != nil {
		return err
	}

	ctx := cmd.Context()
	startCtx, cancel := context.WithTimeout(ctx, fxApp.StartTimeout())
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		if p.Snapshot == "" {
			report.NewPrinter(p.Err).Progress("Closing browser...")
		}
		stopCtx, cancel := context.WithTimeout(context.Background(), fxApp.StopTimeout())
		defer cancel()
		_ = fxApp.Stop(stopCtx)
	}()

	_, err := runner.Run(ctx)
	return err
}
