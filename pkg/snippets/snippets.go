package snippets

// Builder runs the snippet pipeline with a fixed Config and sentence
// Breaker. It holds no mutable state and is safe for concurrent use.
type Builder struct {
	cfg     Config
	breaker Breaker
}

// New returns a Builder that segments with UAX29.
func New(cfg Config) *Builder {
	return &Builder{cfg: cfg.withDefaults(), breaker: UAX29}
}

// WithBreaker returns a copy of b that uses br for sentence boundaries.
func (b *Builder) WithBreaker(br Breaker) *Builder {
	c := *b
	if br != nil {
		c.breaker = br
	}
	return &c
}

// Config returns the effective configuration, defaults applied.
func (b *Builder) Config() Config { return b.cfg }

// Build returns the snippets of text that contain at least one of terms,
// in sentence order. Empty text, no terms or no matches give an empty slice.
func (b *Builder) Build(text string, terms []string) []Snippet {
	out := []Snippet{}
	if text == "" || len(terms) == 0 {
		return out
	}
	for _, sentence := range b.Segment(text) {
		s := newSnippet(sentence, terms)
		if len(s.Terms) == 0 {
			continue
		}
		out = append(out, b.Fit(s, terms))
	}
	return out
}

// Build is shorthand for New(cfg).Build(text, terms).
func Build(text string, terms []string, cfg Config) []Snippet {
	return New(cfg).Build(text, terms)
}
