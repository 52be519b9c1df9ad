package harvest

import (
	"fmt"
	"time"

	"github.com/matheus3301/waharvest/internal/classify"
	"github.com/matheus3301/waharvest/internal/media"
	"github.com/matheus3301/waharvest/internal/status"
)

// Mode selects how deep a run extracts.
type Mode string

const (
	// ModeSummary reads the chat list only.
	ModeSummary Mode = "summary"
	// ModeThreads opens each chat and reads its recent messages and media.
	ModeThreads Mode = "threads"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeSummary, ModeThreads:
		return m, nil
	default:
		return "", fmt.Errorf("unknown harvest mode %q (want %q or %q)", s, ModeSummary, ModeThreads)
	}
}

// ChatSummary is one classified chat-list entry.
type ChatSummary struct {
	Name                 string            `json:"name"`
	LastMessageText      string            `json:"message"`
	LastMessageTimeLabel string            `json:"time"`
	HasUnread            bool              `json:"unread"`
	Derived              classify.Metadata `json:"meta"`
}

// MediaAsset is one attachment. StoredPath is empty unless the download succeeded.
type MediaAsset struct {
	Kind          media.Kind `json:"kind"`
	SourceLocator string     `json:"source"`
	StoredPath    string     `json:"stored_path,omitempty"`
}

// Stored reports whether the asset was persisted.
func (a MediaAsset) Stored() bool {
	return a.StoredPath != ""
}

// MessageRecord is one message of an opened thread.
type MessageRecord struct {
	Text  string       `json:"text"`
	Media []MediaAsset `json:"media,omitempty"`
}

// ChatThread pairs a chat with the messages harvested from it.
type ChatThread struct {
	Chat     ChatSummary     `json:"chat"`
	State    status.State    `json:"state"`
	Messages []MessageRecord `json:"messages"`
}

// Result is everything a run assembled. Summaries is set in summary mode,
// Threads in threads mode.
type Result struct {
	RunID      string        `json:"run_id"`
	Mode       Mode          `json:"mode"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Summaries  []ChatSummary `json:"chats,omitempty"`
	Threads    []ChatThread  `json:"threads,omitempty"`
}

// Counts summarises a result for progress reporting.
type Counts struct {
	Chats    int
	Failed   int
	Messages int
	Media    int
	Stored   int
}

// Counts tallies the result.
func (r *Result) Counts() Counts {
	c := Counts{Chats: len(r.Summaries) + len(r.Threads)}
	for _, th := range r.Threads {
		if th.State == status.Failed {
			c.Failed++
		}
		c.Messages += len(th.Messages)
		for _, m := range th.Messages {
			c.Media += len(m.Media)
			for _, a := range m.Media {
				if a.Stored() {
					c.Stored++
				}
			}
		}
	}
	return c
}
