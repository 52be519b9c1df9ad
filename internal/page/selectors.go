package page

// Selectors holds every descriptor the harvester queries. Defaults follow the
// WhatsApp Web DOM.
type Selectors struct {
	ChatPane       string `toml:"chat_pane"`
	ChatRow        string `toml:"chat_row"`
	ChatName       string `toml:"chat_name"`
	ChatNameAttr   string `toml:"chat_name_attr"`
	LastMessage    string `toml:"last_message"`
	TimeLabel      string `toml:"time_label"`
	UnreadBadge    string `toml:"unread_badge"`
	GroupSender    string `toml:"group_sender"`
	ThreadBody     string `toml:"thread_body"`
	ThreadScroller string `toml:"thread_scroller"`
	MessageRow     string `toml:"message_row"`
	MessageText    string `toml:"message_text"`
	Image          string `toml:"image"`
	Video          string `toml:"video"`
	MediaAttr      string `toml:"media_attr"`
}

// DefaultSelectors returns the WhatsApp Web descriptors.
// GroupSender is empty: the chat list carries no reliable sender marker, so
// rows are never classified as groups unless one is configured.
func DefaultSelectors() Selectors {
	return Selectors{
		ChatPane:       "#pane-side",
		ChatRow:        "div[role='row']",
		ChatName:       "span[title]",
		ChatNameAttr:   "title",
		LastMessage:    "div[aria-label] span[dir='ltr']",
		TimeLabel:      "div[aria-label] span[dir='auto']",
		UnreadBadge:    "span[aria-label*='unread']",
		ThreadBody:     "#main",
		ThreadScroller: "div[data-testid='conversation-panel-messages']",
		MessageRow:     "div.message-in, div.message-out",
		MessageText:    "span.selectable-text",
		Image:          "img[src]",
		Video:          "video[src]",
		MediaAttr:      "src",
	}
}

// WithDefaults fills every empty descriptor except GroupSender from DefaultSelectors.
func (s Selectors) WithDefaults() Selectors {
	d := DefaultSelectors()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.ChatPane, d.ChatPane)
	fill(&s.ChatRow, d.ChatRow)
	fill(&s.ChatName, d.ChatName)
	fill(&s.ChatNameAttr, d.ChatNameAttr)
	fill(&s.LastMessage, d.LastMessage)
	fill(&s.TimeLabel, d.TimeLabel)
	fill(&s.UnreadBadge, d.UnreadBadge)
	fill(&s.ThreadBody, d.ThreadBody)
	fill(&s.ThreadScroller, d.ThreadScroller)
	fill(&s.MessageRow, d.MessageRow)
	fill(&s.MessageText, d.MessageText)
	fill(&s.Image, d.Image)
	fill(&s.Video, d.Video)
	fill(&s.MediaAttr, d.MediaAttr)
	return s
}
