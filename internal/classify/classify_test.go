package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLengthOfBoundaries(t *testing.T) {
	tests := []struct {
		n    int
		want Length
	}{
		{0, LengthShort},
		{19, LengthShort},
		{20, LengthMedium},
		{99, LengthMedium},
		{100, LengthLong},
		{500, LengthLong},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LengthOf(strings.Repeat("a", tt.n)), "length %d", tt.n)
	}
}

func TestLengthOfCountsCharacters(t *testing.T) {
	// Multi-byte runes count once.
	assert.Equal(t, LengthShort, LengthOf(strings.Repeat("é", 19)))
	assert.Equal(t, LengthShort, LengthOf(strings.Repeat("日", 19)))
	assert.Equal(t, LengthMedium, LengthOf(strings.Repeat("日", 20)))
}

func TestChatTypeOf(t *testing.T) {
	tests := []struct {
		name   string
		sender bool
		want   ChatType
	}{
		{"+1 555 123 4567", false, ChatUnknown},
		{"5551234567", false, ChatUnknown},
		{"555 123\t4567", false, ChatUnknown},
		{"", false, ChatUnknown},
		{"Alice", false, ChatContact},
		{"Unknown", false, ChatContact},
		{"Room 101", false, ChatContact},
		{"   ", false, ChatContact},
		{"Alice", true, ChatGroup},
		{"+1 555", true, ChatGroup},
		{"", true, ChatGroup},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChatTypeOf(tt.name, tt.sender), "ChatTypeOf(%q, %v)", tt.name, tt.sender)
	}
}

func TestDayOf(t *testing.T) {
	tests := map[string]Day{
		"Yesterday":      DayYesterday,
		"yesterday 9:14": DayYesterday,
		"TODAY":          DayToday,
		"3/4/2024":       DayOlder,
		"12/31/2023":     DayOlder,
		"٣/٤/٢٠٢٤":       DayOlder,
		"3/4/24":         DayUnknown,
		"on 3/4/2024":    DayUnknown,
		"10:42":          DayUnknown,
		"Monday":         DayUnknown,
		"":               DayUnknown,
	}
	for label, want := range tests {
		assert.Equal(t, want, DayOf(label), "DayOf(%q)", label)
	}
}

func TestContainsEmoji(t *testing.T) {
	assert.True(t, ContainsEmoji("see you 😀"))
	assert.True(t, ContainsEmoji("🚀"))
	assert.True(t, ContainsEmoji("flag 🇧🇷"))
	assert.True(t, ContainsEmoji("🌍"))
	assert.False(t, ContainsEmoji("plain text"))
	assert.False(t, ContainsEmoji(""))
	// Supplemental Symbols and Pictographs are outside the covered blocks.
	assert.False(t, ContainsEmoji("🤖"))
}

func TestPriorityOf(t *testing.T) {
	assert.Equal(t, PriorityHigh, PriorityOf(true, SentimentNegative))
	assert.Equal(t, PriorityMedium, PriorityOf(true, SentimentNeutral))
	assert.Equal(t, PriorityMedium, PriorityOf(true, SentimentPositive))
	assert.Equal(t, PriorityLow, PriorityOf(false, SentimentNegative))
	assert.Equal(t, PriorityLow, PriorityOf(false, SentimentNeutral))
}
