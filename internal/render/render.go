// Package render writes snippets and search results as text, JSON, JSON
// Lines or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"snippet_find/internal/search"
	"snippet_find/pkg/snippets"
)

// Format names an output encoding.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// ParseFormat maps a format name to a Format; empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatJSONL, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Options configure a Renderer.
type Options struct {
	Format Format
	// Color is auto, always or never. Auto colours only terminals.
	Color     string
	MarkOpen  string
	MarkClose string
}

// Renderer writes snippets and search results to one writer in one format.
type Renderer struct {
	w      io.Writer
	format Format
	mark   func(string) string
	path   func(string) string
}

// UseColor resolves a colour mode for w. NO_COLOR disables auto mode.
func UseColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// New returns a Renderer for w. Text output is coloured when opts.Color
// allows it, and wrapped in MarkOpen and MarkClose otherwise.
func New(w io.Writer, opts Options) *Renderer {
	r := &Renderer{w: w, format: opts.Format}
	if r.format == "" {
		r.format = FormatText
	}
	if UseColor(opts.Color, w) {
		lr := lipgloss.NewRenderer(w)
		lr.SetColorProfile(termenv.ANSI256)
		term := lr.NewStyle().Foreground(lipgloss.Color("#A78BFA")).Bold(true)
		path := lr.NewStyle().Foreground(lipgloss.Color("#6C7086"))
		r.mark = func(s string) string { return term.Render(s) }
		r.path = func(s string) string { return path.Render(s) }
	} else {
		r.mark = Marker(opts.MarkOpen, opts.MarkClose)
		r.path = func(s string) string { return s }
	}
	return r
}

// Snippets writes the snippets of a single text.
func (r *Renderer) Snippets(ss []snippets.Snippet) error {
	if ss == nil {
		ss = []snippets.Snippet{}
	}
	switch r.format {
	case FormatJSON:
		return r.json(ss)
	case FormatJSONL:
		return jsonLines(r.w, ss)
	case FormatYAML:
		return r.yaml(ss)
	}
	if len(ss) == 0 {
		_, err := fmt.Fprintln(r.w, "No matches.")
		return err
	}
	for i, s := range ss {
		if _, err := fmt.Fprintf(r.w, "%d. %s\n", i+1, r.line(s)); err != nil {
			return err
		}
	}
	return nil
}

// Results writes a finished search, one line per file in text mode.
func (r *Renderer) Results(rs []search.Result) error {
	if rs == nil {
		rs = []search.Result{}
	}
	switch r.format {
	case FormatJSON:
		return r.json(rs)
	case FormatJSONL:
		return jsonLines(r.w, rs)
	case FormatYAML:
		return r.yaml(rs)
	}
	if len(rs) == 0 {
		_, err := fmt.Fprintln(r.w, "No matches.")
		return err
	}
	for i, res := range rs {
		if err := r.Result(i+1, res); err != nil {
			return err
		}
	}
	return nil
}

// Result writes one search result. n numbers the line in text mode.
func (r *Renderer) Result(n int, res search.Result) error {
	switch r.format {
	case FormatText:
		parts := make([]string, 0, len(res.Snippets))
		for _, s := range res.Snippets {
			parts = append(parts, r.line(s))
		}
		_, err := fmt.Fprintf(r.w, "%d\t%s\t%s\n", n, r.path(res.Path), strings.Join(parts, "  |  "))
		return err
	case FormatYAML:
		return r.yaml([]search.Result{res})
	default:
		return json.NewEncoder(r.w).Encode(res)
	}
}

// line highlights s and folds its whitespace so a snippet spanning
// several source lines prints on one.
func (r *Renderer) line(s snippets.Snippet) string {
	return strings.Join(strings.Fields(Highlight(s, r.mark)), " ")
}

func (r *Renderer) json(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Renderer) yaml(v any) error {
	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func jsonLines[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}
