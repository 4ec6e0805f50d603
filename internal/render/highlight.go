package render

import (
	"sort"
	"strings"

	"snippet_find/pkg/snippets"
)

// Highlight returns s.Text with every matched term passed through mark.
// Overlapping matches of different terms keep the one starting first,
// and the longer one when both start together.
func Highlight(s snippets.Snippet, mark func(string) string) string {
	if len(s.Terms) == 0 || mark == nil {
		return s.Text
	}
	spans := make([]snippets.MatchedTerm, 0, len(s.Terms))
	for _, t := range s.Terms {
		if t.Start >= 0 && t.Length > 0 && t.End() <= len(s.Text) {
			spans = append(spans, t)
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].Length > spans[j].Length
	})

	var sb strings.Builder
	pos := 0
	for _, t := range spans {
		if t.Start < pos {
			continue
		}
		sb.WriteString(s.Text[pos:t.Start])
		sb.WriteString(mark(s.Text[t.Start:t.End()]))
		pos = t.End()
	}
	sb.WriteString(s.Text[pos:])
	return sb.String()
}

// Marker wraps text in fixed open and close strings.
func Marker(open, close string) func(string) string {
	return func(s string) string { return open + s + close }
}
