package snippets

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = "..."

// Fit returns s unchanged when it is within MaxLength. Otherwise it rebuilds
// the text as a window around the first matched term: up to Lookahead words
// before it, as many words after it as fit, then earlier words to fill any
// remaining room. Matches are recomputed against the rebuilt text, so terms
// that fall outside the window are dropped.
func (b *Builder) Fit(s Snippet, terms []string) Snippet {
	if utf8.RuneCountInString(s.Text) <= b.cfg.MaxLength || len(s.Terms) == 0 {
		return s
	}

	keyword := s.Terms[0].Text
	w := &window{
		max:          b.cfg.MaxLength,
		lookahead:    b.cfg.Lookahead,
		keyword:      keyword,
		keywordFirst: strings.Index(s.Text, keyword) == 0,
		segments:     splitKeepLeading(s.Text, keyword),
	}
	if len(w.segments) == 0 {
		// The text is nothing but repetitions of the keyword.
		w.segments = []string{"", ""}
	}

	for p := phaseLead; p != phaseDone; {
		p = w.step(p)
	}

	text := w.String()
	if !w.keywordFirst && strings.Index(s.Text, strings.TrimSuffix(text, " "+ellipsis)) != 0 {
		text = ellipsis + " " + text
	}
	return newSnippet(text, terms)
}

type phase int

const (
	phaseLead phase = iota
	phaseTrail
	phaseBackfill
	phaseDone
)

// window assembles a trimmed snippet. head holds backfilled words in the
// order they were taken (nearest first); n is the rune length of head and
// body together and is the only quantity compared against max.
type window struct {
	max          int
	lookahead    int
	keyword      string
	keywordFirst bool
	segments     []string

	head []string
	body strings.Builder
	n    int
}

func (w *window) step(p phase) phase {
	switch p {
	case phaseLead:
		w.lead()
		return phaseTrail
	case phaseTrail:
		w.trail()
		return phaseBackfill
	case phaseBackfill:
		w.backfill()
	}
	return phaseDone
}

func (w *window) write(s string) {
	w.body.WriteString(s)
	w.n += utf8.RuneCountInString(s)
}

func (w *window) prepend(word string) {
	w.head = append(w.head, word)
	w.n += utf8.RuneCountInString(word)
}

// lead keeps the last lookahead words before the first keyword.
func (w *window) lead() {
	if w.keywordFirst {
		return
	}
	words := splitKeepLeading(w.segments[0], " ")
	if len(words) > w.lookahead {
		words = words[len(words)-w.lookahead:]
	}
	for _, word := range words {
		w.write(word + " ")
	}
	w.write(w.keyword)
}

// trail appends words after the keyword, restoring the keyword between
// segments, until the budget is spent.
func (w *window) trail() {
	from := 1
	if w.keywordFirst {
		from = 0
	}
	for i := from; i < len(w.segments); i++ {
		for _, word := range splitKeepLeading(w.segments[i], " ") {
			if w.n > w.max {
				w.write(ellipsis)
				return
			}
			w.write(word + " ")
		}
		if i < len(w.segments)-1 {
			w.write(w.keyword)
		}
	}
}

// backfill prepends the words that lead skipped, nearest first.
func (w *window) backfill() {
	if w.n >= w.max {
		return
	}
	words := splitKeepLeading(w.segments[0], " ")
	if len(words) <= w.lookahead {
		return
	}
	for i := len(words) - w.lookahead - 1; i >= 0; i-- {
		w.prepend(words[i] + " ")
		if w.n >= w.max {
			return
		}
	}
}

func (w *window) String() string {
	var sb strings.Builder
	sb.Grow(w.body.Len() + 8*len(w.head))
	for i := len(w.head) - 1; i >= 0; i-- {
		sb.WriteString(w.head[i])
	}
	sb.WriteString(w.body.String())
	return sb.String()
}

// splitKeepLeading splits s around sep, keeping a leading empty element when
// s starts with sep and dropping trailing empty elements. An empty s yields
// a single empty element.
func splitKeepLeading(s, sep string) []string {
	if s == "" {
		return []string{""}
	}
	parts := strings.Split(s, sep)
	n := len(parts)
	for n > 0 && parts[n-1] == "" {
		n--
	}
	return parts[:n]
}
