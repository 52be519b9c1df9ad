// Package report renders harvest results and archive queries for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/matheus3301/waharvest/internal/harvest"
	"github.com/matheus3301/waharvest/internal/store"
)

// DefaultRows is how many chats the summary table shows.
const DefaultRows = 5

// UnreadMark flags an unread chat.
const UnreadMark = "✔"

// chatColumns are the summary table columns with their maximum widths. A
// header longer than its width widens the column rather than wrapping.
var chatColumns = []struct {
	name  string
	width int
}{
	{"#", 3},
	{"Chat Name", 20},
	{"Type", 8},
	{"Unread", 6},
	{"Sentiment", 10},
	{"Priority", 8},
	{"Last Msg Time", 12},
	{"Last Msg", 40},
}

// ChatRow is one line of the summary table.
type ChatRow struct {
	Name      string
	Type      string
	Unread    bool
	Sentiment string
	Priority  string
	Time      string
	Message   string
}

// RowFromSummary converts a harvested chat.
func RowFromSummary(c harvest.ChatSummary) ChatRow {
	return ChatRow{
		Name:      c.Name,
		Type:      string(c.Derived.ChatType),
		Unread:    c.HasUnread,
		Sentiment: string(c.Derived.Sentiment),
		Priority:  string(c.Derived.Priority),
		Time:      c.LastMessageTimeLabel,
		Message:   c.LastMessageText,
	}
}

// RowFromChat converts an archived chat.
func RowFromChat(c store.Chat) ChatRow {
	return ChatRow{
		Name:      c.Name,
		Type:      c.ChatType,
		Unread:    c.Unread,
		Sentiment: c.Sentiment,
		Priority:  c.Priority,
		Time:      c.TimeLabel,
		Message:   c.LastMessage,
	}
}

// Chats writes the first rows chats as the "Most Recent" table. rows <= 0
// means DefaultRows. An empty list prints a notice instead of a table.
func Chats(w io.Writer, chats []ChatRow, rows int) error {
	if len(chats) == 0 {
		_, err := fmt.Fprintln(w, "No msg found!")
		return err
	}
	if rows <= 0 {
		rows = DefaultRows
	}
	chats = chats[:min(rows, len(chats))]

	t := newTable()
	t.SetTitle(fmt.Sprintf("Your %d Most Recent WhatsApp Chats", len(chats)))
	header := make(table.Row, len(chatColumns))
	configs := make([]table.ColumnConfig, len(chatColumns))
	for i, c := range chatColumns {
		header[i] = c.name
		configs[i] = table.ColumnConfig{
			Name:             c.name,
			WidthMax:         max(c.width, text.StringWidthWithoutEscSequences(c.name)),
			WidthMaxEnforcer: text.WrapSoft,
			Align:            text.AlignLeft,
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for i, c := range chats {
		unread := ""
		if c.Unread {
			unread = UnreadMark
		}
		t.AppendRow(table.Row{i + 1, c.Name, c.Type, unread, c.Sentiment, c.Priority, c.Time, c.Message})
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// Summaries renders a summary-mode result.
func Summaries(w io.Writer, chats []harvest.ChatSummary, rows int) error {
	out := make([]ChatRow, len(chats))
	for i, c := range chats {
		out[i] = RowFromSummary(c)
	}
	return Chats(w, out, rows)
}

// Threads renders one line per opened chat with message and media tallies.
func Threads(w io.Writer, threads []harvest.ChatThread) error {
	if len(threads) == 0 {
		_, err := fmt.Fprintln(w, "No msg found!")
		return err
	}
	t := newTable()
	t.SetTitle(fmt.Sprintf("%d WhatsApp Threads", len(threads)))
	t.AppendHeader(table.Row{"#", "Chat Name", "Type", "State", "Messages", "Media", "Saved", "Last Msg"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Chat Name", WidthMax: 20},
		{Name: "Last Msg", WidthMax: 40},
	})
	for i, th := range threads {
		var assets, saved int
		last := ""
		for _, m := range th.Messages {
			assets += len(m.Media)
			for _, a := range m.Media {
				if a.Stored() {
					saved++
				}
			}
			if m.Text != "" {
				last = m.Text
			}
		}
		t.AppendRow(table.Row{i + 1, th.Chat.Name, string(th.Chat.Derived.ChatType), string(th.State),
			len(th.Messages), assets, saved, oneLine(last)})
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// Messages lists the messages of one archived chat.
func Messages(w io.Writer, chat store.Chat) error {
	t := newTable()
	t.SetTitle(chat.Name)
	t.AppendHeader(table.Row{"#", "Text", "Media"})
	t.SetColumnConfigs([]table.ColumnConfig{{Name: "Text", WidthMax: 60}, {Name: "Media", WidthMax: 50}})
	for _, m := range chat.Messages {
		var files []string
		for _, a := range m.Media {
			if a.StoredPath != "" {
				files = append(files, a.StoredPath)
			} else {
				files = append(files, a.Kind+" (not saved)")
			}
		}
		t.AppendRow(table.Row{m.Position + 1, m.Body, strings.Join(files, "\n")})
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// Runs lists archived runs.
func Runs(w io.Writer, runs []store.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	t := newTable()
	t.AppendHeader(table.Row{"Run", "Mode", "Status", "Chats", "Started", "Took"})
	for _, r := range runs {
		started := time.UnixMilli(r.StartedAt)
		took := time.UnixMilli(r.FinishedAt).Sub(started).Round(time.Millisecond)
		t.AppendRow(table.Row{r.ID, r.Mode, r.Status, r.ChatCount, started.Format(time.DateTime), took})
	}
	t.AppendFooter(table.Row{"Total", len(runs)})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// Search lists message hits.
func Search(w io.Writer, results []store.SearchResult, query string) error {
	t := newTable()
	t.AppendHeader(table.Row{"#", "Run", "Chat Name", "Message"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Chat Name", WidthMax: 20},
		{Name: "Message", WidthMax: 60},
	})
	for i, r := range results {
		t.AppendRow(table.Row{i + 1, r.RunID, r.ChatName, oneLine(r.Message.Body)})
	}
	t.AppendFooter(table.Row{"Total", len(results), "", fmt.Sprintf("Query: %s", query)})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// JSON writes v indented.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleDefault)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
