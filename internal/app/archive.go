package app

import (
	"fmt"

	"github.com/matheus3301/waharvest/internal/report"
	"github.com/matheus3301/waharvest/internal/store"
)

// Archive answers queries over past runs.
type Archive struct {
	db     *store.DB
	params Params
}

// NewArchive creates an Archive.
func NewArchive(p Params, db *store.DB) *Archive {
	return &Archive{db: db, params: p}
}

// Runs lists the most recent runs.
func (a *Archive) Runs(limit int) error {
	runs, err := a.db.ListRuns(limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if a.params.JSON {
		return report.JSON(a.params.Out, runs)
	}
	return report.Runs(a.params.Out, runs)
}

// Show prints one run: its chat table, and for thread runs every thread.
func (a *Archive) Show(id string) error {
	run, err := a.db.GetRun(id)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run %q not found", id)
	}
	chats, err := a.db.LoadRun(id)
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}
	if a.params.JSON {
		return report.JSON(a.params.Out, struct {
			*store.Run
			Chats []store.Chat `json:"chats"`
		}{run, chats})
	}

	if err := report.Runs(a.params.Out, []store.Run{*run}); err != nil {
		return err
	}
	rows := make([]report.ChatRow, len(chats))
	for i, c := range chats {
		rows[i] = report.RowFromChat(c)
	}
	if err := report.Chats(a.params.Out, rows, len(rows)); err != nil {
		return err
	}
	for _, c := range chats {
		if len(c.Messages) == 0 {
			continue
		}
		if err := report.Messages(a.params.Out, c); err != nil {
			return err
		}
	}
	return nil
}

// Search lists archived messages containing query.
func (a *Archive) Search(query string, limit int) error {
	results, err := a.db.SearchMessages(query, limit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if a.params.JSON {
		return report.JSON(a.params.Out, results)
	}
	return report.Search(a.params.Out, results, query)
}

// Delete removes a run with its chats, messages and media rows. Downloaded
// files are left on disk.
func (a *Archive) Delete(id string) error {
	run, err := a.db.GetRun(id)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run %q not found", id)
	}
	if err := a.db.DeleteRun(id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	report.NewPrinter(a.params.Err).Success("Deleted run %s (%d chats).", id, run.ChatCount)
	return nil
}
