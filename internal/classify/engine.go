package classify

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Lexicon is the fixed word list behind sentiment. Matching is by substring,
// so "sadly" counts as "sad".
type Lexicon struct {
	Positive []string `toml:"positive"`
	Negative []string `toml:"negative"`
}

// DefaultLexicon returns the built-in word sets.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Positive: []string{"good", "great", "happy", "love", "thanks", "awesome"},
		Negative: []string{"bad", "sad", "angry", "hate", "sorry", "problem"},
	}
}

// Fields are the raw inputs for one chat record.
type Fields struct {
	Name            string
	Text            string
	TimeLabel       string
	HasUnread       bool
	HasThreadSender bool
}

// Metadata is the derived, immutable classification of a record.
type Metadata struct {
	ChatType       ChatType  `json:"type"`
	Sentiment      Sentiment `json:"sentiment"`
	LengthCategory Length    `json:"length_category"`
	Day            Day       `json:"day_classification"`
	ContainsEmoji  bool      `json:"contains_emoji"`
	Priority       Priority  `json:"priority"`
}

// Engine holds the compiled lexicon. It is safe for concurrent use.
type Engine struct {
	positive *ahocorasick.Matcher
	negative *ahocorasick.Matcher
}

// New compiles lex. Words are lower-cased; empty words are ignored.
func New(lex Lexicon) *Engine {
	return &Engine{
		positive: compile(lex.Positive),
		negative: compile(lex.Negative),
	}
}

func compile(words []string) *ahocorasick.Matcher {
	keep := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			keep = append(keep, w)
		}
	}
	if len(keep) == 0 {
		return nil
	}
	return ahocorasick.NewStringMatcher(keep)
}

// Sentiment returns positive if any positive word occurs in text, else
// negative if any negative word occurs, else neutral. Positive wins ties.
func (e *Engine) Sentiment(text string) Sentiment {
	lower := []byte(strings.ToLower(text))
	if hit(e.positive, lower) {
		return SentimentPositive
	}
	if hit(e.negative, lower) {
		return SentimentNegative
	}
	return SentimentNeutral
}

func hit(m *ahocorasick.Matcher, text []byte) bool {
	if m == nil {
		return false
	}
	return len(m.MatchThreadSafe(text)) > 0
}

// Classify computes every metadata field for f.
func (e *Engine) Classify(f Fields) Metadata {
	sentiment := e.Sentiment(f.Text)
	return Metadata{
		ChatType:       ChatTypeOf(f.Name, f.HasThreadSender),
		Sentiment:      sentiment,
		LengthCategory: LengthOf(f.Text),
		Day:            DayOf(f.TimeLabel),
		ContainsEmoji:  ContainsEmoji(f.Text),
		Priority:       PriorityOf(f.HasUnread, sentiment),
	}
}
