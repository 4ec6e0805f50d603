// Package snippets carves short, match-centred excerpts out of a text for
// search-result highlighting.
//
// The pipeline has three stages: sentences are segmented (short ones merged
// into a neighbour), sentences without any term occurrence are dropped, and
// oversized sentences are rewritten into a window around their first match.
// Every Snippet carries the matches found in its own final text.
package snippets

import "strings"

const (
	DefaultMinLength = 100
	DefaultMaxLength = 200
	DefaultLookahead = 7
)

// MatchedTerm is one occurrence of a term inside the text that owns it.
// Start and Length are byte offsets, so owner[Start:Start+Length] == Text.
type MatchedTerm struct {
	Text   string `json:"text" yaml:"text"`
	Start  int    `json:"start" yaml:"start"`
	Length int    `json:"length" yaml:"length"`
}

// End returns the byte offset just past the match.
func (m MatchedTerm) End() int { return m.Start + m.Length }

// Snippet is a bounded excerpt and the matches located in it.
type Snippet struct {
	Text  string        `json:"text" yaml:"text"`
	Terms []MatchedTerm `json:"terms" yaml:"terms"`
}

func newSnippet(text string, terms []string) Snippet {
	text = strings.TrimSpace(text)
	return Snippet{Text: text, Terms: FindMatches(text, terms)}
}

// Config bounds snippet sizes. Lengths are counted in characters (runes).
// Zero or negative fields fall back to their defaults.
type Config struct {
	MinLength int `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength int `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	// Lookahead is the number of words kept before the keyword when an
	// oversized sentence is trimmed.
	Lookahead int `json:"lookahead,omitempty" yaml:"lookahead,omitempty"`
}

// DefaultConfig returns the default lengths and lookahead.
func DefaultConfig() Config {
	return Config{
		MinLength: DefaultMinLength,
		MaxLength: DefaultMaxLength,
		Lookahead: DefaultLookahead,
	}
}

func (c Config) withDefaults() Config {
	if c.MinLength <= 0 {
		c.MinLength = DefaultMinLength
	}
	if c.MaxLength <= 0 {
		c.MaxLength = DefaultMaxLength
	}
	if c.Lookahead <= 0 {
		c.Lookahead = DefaultLookahead
	}
	return c
}
