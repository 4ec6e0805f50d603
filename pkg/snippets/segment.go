package snippets

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Breaker locates sentence boundaries. Next returns the end offset of the
// sentence that begins at byte offset start; ok is false once the text is
// exhausted. Successive spans never overlap.
type Breaker interface {
	Next(text string, start int) (end int, ok bool)
}

// BreakerFunc adapts a plain function to Breaker.
type BreakerFunc func(text string, start int) (int, bool)

func (f BreakerFunc) Next(text string, start int) (int, bool) { return f(text, start) }

// UAX29 splits sentences using the Unicode Standard Annex #29 rules.
// Trailing spaces stay with the sentence they follow.
var UAX29 Breaker = BreakerFunc(func(text string, start int) (int, bool) {
	if start >= len(text) {
		return start, false
	}
	sentence, _, _ := uniseg.FirstSentenceInString(text[start:], -1)
	if sentence == "" {
		return start, false
	}
	return start + len(sentence), true
})

// Punctuation is a lighter breaker: a sentence ends after a run of
// terminators (and closing quotes/brackets) that is followed by whitespace,
// an opening bracket or the end of the text. CJK full stops always end a
// sentence.
var Punctuation Breaker = BreakerFunc(punctuationNext)

func punctuationNext(text string, start int) (int, bool) {
	if start >= len(text) {
		return start, false
	}
	i := start
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if !isTerminator(r) {
			continue
		}
		last := r
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if !isTerminator(r) && !isCloser(r) {
				break
			}
			if isTerminator(r) {
				last = r
			}
			i += size
		}
		if i == len(text) {
			return i, true
		}
		next, _ := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(next) && !isOpener(next) && !isWideTerminator(last) {
			continue
		}
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(r) {
				break
			}
			i += size
		}
		return i, true
	}
	return len(text), true
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…', '。', '！', '？':
		return true
	}
	return false
}

func isWideTerminator(r rune) bool {
	return r == '。' || r == '！' || r == '？'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '}', '”', '’', '」', '』', '）':
		return true
	}
	return false
}

func isOpener(r rune) bool {
	switch r {
	case '(', '[', '{', '“', '‘', '「', '『', '（':
		return true
	}
	return false
}

// Segment splits text into sentences. A sentence shorter than MinLength is
// joined with the sentence after it, or, when it is the last one, appended
// to the previously emitted sentence. Blank units are skipped.
func (b *Builder) Segment(text string) []string {
	var sentences []string
	if text == "" {
		return sentences
	}

	start := 0
	for {
		end, ok := b.next(text, start)
		if !ok {
			break
		}
		sentence := text[start:end]
		start = end

		if strings.TrimSpace(sentence) == "" {
			continue
		}

		if utf8.RuneCountInString(sentence) < b.cfg.MinLength {
			if next, ok := b.next(text, start); ok {
				sentence += text[start:next]
				start = next
			} else if n := len(sentences); n > 0 {
				sentence = sentences[n-1] + sentence
				sentences = sentences[:n-1]
			}
		}
		sentences = append(sentences, sentence)
	}
	return sentences
}

// next guards against breakers that fail to make progress.
func (b *Builder) next(text string, start int) (int, bool) {
	end, ok := b.breaker.Next(text, start)
	if !ok || end <= start || end > len(text) {
		return start, false
	}
	return end, true
}
