// Package classify derives chat metadata from extracted fields. Every function
// is deterministic and total.
package classify

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ChatType is the kind of conversation a chat row represents.
type ChatType string

const (
	ChatContact ChatType = "contact"
	ChatGroup   ChatType = "group"
	ChatUnknown ChatType = "unknown"
)

// Sentiment is the lexicon verdict for a message.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Length buckets a message by character count.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Day buckets a recency label.
type Day string

const (
	DayToday     Day = "today"
	DayYesterday Day = "yesterday"
	DayOlder     Day = "older"
	DayUnknown   Day = "unknown"
)

// Priority ranks a chat for follow-up.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

const (
	shortLimit  = 20
	mediumLimit = 100
)

var datePattern = regexp.MustCompile(`^\p{Nd}{1,2}/\p{Nd}{1,2}/\p{Nd}{4}`)

// ChatTypeOf classifies a chat from its display name. A row that shows a
// per-message sender is a group regardless of name.
func ChatTypeOf(name string, hasThreadSender bool) ChatType {
	if hasThreadSender {
		return ChatGroup
	}
	if name == "" || strings.HasPrefix(name, "+") || allDigits(name) {
		return ChatUnknown
	}
	return ChatContact
}

// allDigits reports whether s, with whitespace removed, is a non-empty digit run.
func allDigits(s string) bool {
	seen := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if !unicode.IsDigit(r) {
			return false
		}
		seen = true
	}
	return seen
}

// LengthOf buckets text at 20 and 100 characters.
func LengthOf(text string) Length {
	n := utf8.RuneCountInString(text)
	switch {
	case n < shortLimit:
		return LengthShort
	case n < mediumLimit:
		return LengthMedium
	default:
		return LengthLong
	}
}

// DayOf classifies a raw time label such as "Yesterday" or "3/4/2024".
func DayOf(label string) Day {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "today"):
		return DayToday
	case strings.Contains(lower, "yesterday"):
		return DayYesterday
	case datePattern.MatchString(label):
		return DayOlder
	default:
		return DayUnknown
	}
}

// emojiRanges covers emoticons, symbols & pictographs, transport & map and
// regional indicator flags. Supplemental symbols are not included.
var emojiRanges = &unicode.RangeTable{
	R32: []unicode.Range32{
		{Lo: 0x1F1E0, Hi: 0x1F1FF, Stride: 1},
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1},
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1},
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1},
	},
}

// ContainsEmoji reports whether any rune of text is in an emoji block.
func ContainsEmoji(text string) bool {
	for _, r := range text {
		if unicode.Is(emojiRanges, r) {
			return true
		}
	}
	return false
}

// PriorityOf ranks unread negative chats first, then any unread chat.
func PriorityOf(hasUnread bool, s Sentiment) Priority {
	switch {
	case hasUnread && s == SentimentNegative:
		return PriorityHigh
	case hasUnread:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
