package store

// Run statuses.
const (
	RunOK      = "ok"
	RunAborted = "aborted"
)

// Run is one archived harvest.
type Run struct {
	ID         string `json:"id"`
	Session    string `json:"session"`
	Mode       string `json:"mode"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	StartedAt  int64  `json:"started_at"`
	FinishedAt int64  `json:"finished_at"`
	ChatCount  int    `json:"chat_count"`
}

// Chat is one classified chat of a run. State is empty for summary runs.
type Chat struct {
	ID             int64     `json:"id"`
	RunID          string    `json:"run_id"`
	Position       int       `json:"position"`
	Name           string    `json:"name"`
	LastMessage    string    `json:"last_message"`
	TimeLabel      string    `json:"time_label"`
	Unread         bool      `json:"unread"`
	ChatType       string    `json:"chat_type"`
	Sentiment      string    `json:"sentiment"`
	LengthCategory string    `json:"length_category"`
	DayClass       string    `json:"day_class"`
	ContainsEmoji  bool      `json:"contains_emoji"`
	Priority       string    `json:"priority"`
	State          string    `json:"state,omitempty"`
	Messages       []Message `json:"messages,omitempty"`
}

// Message is one harvested message of a thread.
type Message struct {
	ID       int64   `json:"id"`
	ChatID   int64   `json:"chat_id"`
	Position int     `json:"position"`
	Body     string  `json:"body"`
	Media    []Media `json:"media,omitempty"`
}

// Media is one attachment reference. StoredPath is empty when the download failed.
type Media struct {
	ID         int64  `json:"id"`
	MessageID  int64  `json:"message_id"`
	Position   int    `json:"position"`
	Kind       string `json:"kind"`
	Locator    string `json:"locator"`
	StoredPath string `json:"stored_path,omitempty"`
}

// SearchResult is a message hit with the chat and run it belongs to.
type SearchResult struct {
	RunID    string  `json:"run_id"`
	ChatName string  `json:"chat_name"`
	Message  Message `json:"message"`
}
