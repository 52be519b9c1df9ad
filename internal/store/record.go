package store

import (
	"github.com/matheus3301/waharvest/internal/harvest"
)

// FromResult converts a harvest result into archive rows. runErr marks the
// run as aborted; the partial result is still recorded.
func FromResult(session string, res *harvest.Result, runErr error) (*Run, []Chat) {
	run := &Run{
		ID:         res.RunID,
		Session:    session,
		Mode:       string(res.Mode),
		Status:     RunOK,
		StartedAt:  res.StartedAt.UnixMilli(),
		FinishedAt: res.FinishedAt.UnixMilli(),
	}
	if runErr != nil {
		run.Status = RunAborted
		run.Error = runErr.Error()
	}

	var chats []Chat
	for _, s := range res.Summaries {
		chats = append(chats, chatRow(len(chats), s))
	}
	for _, th := range res.Threads {
		c := chatRow(len(chats), th.Chat)
		c.State = string(th.State)
		for i, m := range th.Messages {
			msg := Message{Position: i, Body: m.Text}
			for j, a := range m.Media {
				msg.Media = append(msg.Media, Media{
					Position:   j,
					Kind:       string(a.Kind),
					Locator:    a.SourceLocator,
					StoredPath: a.StoredPath,
				})
			}
			c.Messages = append(c.Messages, msg)
		}
		chats = append(chats, c)
	}
	run.ChatCount = len(chats)
	return run, chats
}

func chatRow(pos int, s harvest.ChatSummary) Chat {
	d := s.Derived
	return Chat{
		Position:       pos,
		Name:           s.Name,
		LastMessage:    s.LastMessageText,
		TimeLabel:      s.LastMessageTimeLabel,
		Unread:         s.HasUnread,
		ChatType:       string(d.ChatType),
		Sentiment:      string(d.Sentiment),
		LengthCategory: string(d.LengthCategory),
		DayClass:       string(d.Day),
		ContainsEmoji:  d.ContainsEmoji,
		Priority:       string(d.Priority),
	}
}
