package snippets

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// FindMatches returns every occurrence of every term in text. Terms are
// trimmed, blank ones skipped, and scanned in the order given; the
// occurrences of one term are reported left to right, without overlap,
// before those of the next term. Comparison folds case, while the reported
// Text keeps the casing found in text.
func FindMatches(text string, terms []string) []MatchedTerm {
	var found []MatchedTerm
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		for from := 0; from < len(text); {
			start, end, ok := indexFold(text, term, from)
			if !ok {
				break
			}
			found = append(found, MatchedTerm{
				Text:   text[start:end],
				Start:  start,
				Length: end - start,
			})
			from = end
		}
	}
	return found
}

// indexFold finds term in text at or after byte offset from, ignoring case.
// It returns the byte span of the occurrence in text.
func indexFold(text, term string, from int) (start, end int, ok bool) {
	first, _ := utf8.DecodeRuneInString(term)
	for i := from; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if equalFold(r, first) {
			if n, ok := prefixFold(text[i:], term); ok {
				return i, i + n, true
			}
		}
		i += size
	}
	return 0, 0, false
}

// prefixFold reports whether s starts with prefix under simple case folding
// and returns how many bytes of s the prefix covers.
func prefixFold(s, prefix string) (int, bool) {
	n := 0
	for _, pr := range prefix {
		if n >= len(s) {
			return 0, false
		}
		sr, size := utf8.DecodeRuneInString(s[n:])
		if !equalFold(sr, pr) {
			return 0, false
		}
		n += size
	}
	return n, true
}

func equalFold(a, b rune) bool {
	if a == b {
		return true
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}
