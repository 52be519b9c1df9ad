package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matheus3301/waharvest/internal/classify"
	"github.com/matheus3301/waharvest/internal/harvest"
	"github.com/matheus3301/waharvest/internal/media"
	"github.com/matheus3301/waharvest/internal/status"
	"github.com/matheus3301/waharvest/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaries(n int) []harvest.ChatSummary {
	out := make([]harvest.ChatSummary, n)
	for i := range out {
		out[i] = harvest.ChatSummary{
			Name:                 "Chat " + string(rune('A'+i)),
			LastMessageText:      "hello",
			LastMessageTimeLabel: "Yesterday",
			HasUnread:            i == 0,
			Derived: classify.Metadata{
				ChatType:  classify.ChatContact,
				Sentiment: classify.SentimentNeutral,
				Priority:  classify.PriorityLow,
			},
		}
	}
	return out
}

func TestSummariesTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summaries(&buf, summaries(8), 0))
	out := buf.String()

	assert.Contains(t, out, "Your 5 Most Recent WhatsApp Chats")
	for _, col := range []string{"#", "Chat Name", "Type", "Unread", "Sentiment", "Priority", "Last Msg Time", "Last Msg"} {
		assert.Contains(t, out, col)
	}
	assert.Contains(t, out, "Chat E")
	assert.NotContains(t, out, "Chat F", "only the first rows are shown")
	assert.Equal(t, 1, strings.Count(out, UnreadMark))
}

func TestSummariesHeaderNotWrapped(t *testing.T) {
	chats := summaries(1)
	chats[0].LastMessageTimeLabel = "a very long time label"
	chats[0].LastMessageText = strings.Repeat("word ", 20)

	var buf bytes.Buffer
	require.NoError(t, Summaries(&buf, chats, 1))
	out := buf.String()
	assert.Contains(t, out, "Last Msg Time")
	assert.NotContains(t, out, "Last Msg Tim ")
	assert.Contains(t, out, "very long", "values wrap on word boundaries")
}

func TestSummariesFewerThanRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summaries(&buf, summaries(2), 5))
	assert.Contains(t, buf.String(), "Your 2 Most Recent WhatsApp Chats")
}

func TestSummariesEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summaries(&buf, nil, 5))
	assert.Equal(t, "No msg found!\n", buf.String())
}

func TestLongMessageWraps(t *testing.T) {
	chats := summaries(1)
	chats[0].LastMessageText = strings.Repeat("word ", 30)

	var buf bytes.Buffer
	require.NoError(t, Summaries(&buf, chats, 5))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.NotContains(t, line, strings.Repeat("word ", 10), "cell not wrapped at 40")
	}
}

func TestThreadsTable(t *testing.T) {
	threads := []harvest.ChatThread{
		{
			Chat:  harvest.ChatSummary{Name: "Alice", Derived: classify.Metadata{ChatType: classify.ChatContact}},
			State: status.Done,
			Messages: []harvest.MessageRecord{
				{Text: "hi"},
				{Text: "pic", Media: []harvest.MediaAsset{
					{Kind: media.Image, SourceLocator: "x", StoredPath: "downloads/Alice/image_1_0.jpg"},
					{Kind: media.Image, SourceLocator: "y"},
				}},
			},
		},
		{Chat: harvest.ChatSummary{Name: "Bob"}, State: status.Failed},
	}

	var buf bytes.Buffer
	require.NoError(t, Threads(&buf, threads))
	out := buf.String()
	assert.Contains(t, out, "2 WhatsApp Threads")
	assert.Contains(t, out, "DONE")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "pic")
}

func TestRunsAndSearch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Runs(&buf, []store.Run{{ID: "r1", Mode: "summary", Status: "ok", ChatCount: 3, StartedAt: 1000, FinishedAt: 2500}}))
	assert.Contains(t, buf.String(), "r1")
	assert.Contains(t, buf.String(), "1.5s")

	buf.Reset()
	require.NoError(t, Runs(&buf, nil))
	assert.Contains(t, buf.String(), "No runs recorded.")

	buf.Reset()
	require.NoError(t, Search(&buf, []store.SearchResult{{RunID: "r1", ChatName: "Alice", Message: store.Message{Body: "hello\nworld"}}}, "hello"))
	assert.Contains(t, buf.String(), "hello world")
	assert.Contains(t, buf.String(), "Query: hello")
}

func TestMessagesTable(t *testing.T) {
	var buf bytes.Buffer
	chat := store.Chat{Name: "Alice", Messages: []store.Message{
		{Position: 0, Body: "hi"},
		{Position: 1, Media: []store.Media{{Kind: "video", Locator: "blob:x"}}},
	}}
	require.NoError(t, Messages(&buf, chat))
	assert.Contains(t, buf.String(), "video (not saved)")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, summaries(1)))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Chat A", got[0]["name"])
	meta, ok := got[0]["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "contact", meta["type"])
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Progress("Loading your chats...")
	p.Error("failed %d", 2)
	assert.Contains(t, buf.String(), "Loading your chats...")
	assert.Contains(t, buf.String(), "failed 2")

	var nilPrinter *Printer
	nilPrinter.Success("no panic")
}
