package bus

import "time"

// Event kinds published during a harvest run.
const (
	KindRunStarted  = "harvest.started"
	KindChat        = "harvest.chat"
	KindChatState   = "harvest.chat_state"
	KindMedia       = "harvest.media"
	KindRunFinished = "harvest.finished"
)

// Event represents a progress event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
