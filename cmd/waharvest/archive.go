package main

import (
	"context"

	"github.com/matheus3301/waharvest/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newRunsCmd(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withArchive(cmd, g, func(a *app.Archive) error { return a.Runs(limit) })
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to list")
	return cmd
}

func newShowCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the chats, messages and media of an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(cmd, g, func(a *app.Archive) error { return a.Show(args[0]) })
		},
	}
}

func newSearchCmd(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search archived messages (case-insensitive substring)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(cmd, g, func(a *app.Archive) error { return a.Search(args[0], limit) })
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum results")
	return cmd
}

func newDeleteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Remove an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(cmd, g, func(a *app.Archive) error { return a.Delete(args[0]) })
		},
	}
}

// withArchive starts only the core module and hands fn the archive.
func withArchive(cmd *cobra.Command, g *globals, fn func(*app.Archive) error) error {
	var archive *app.Archive
	fxApp := fx.New(
		app.Core(g.params(cmd)),
		app.FxLogger(),
		fx.Populate(&archive),
	)
	if err := fxApp.Err(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), fxApp.StartTimeout())
	defer cancel()
	if err := fxApp.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), fxApp.StopTimeout())
		defer cancel()
		_ = fxApp.Stop(stopCtx)
	}()
	return fn(archive)
}
