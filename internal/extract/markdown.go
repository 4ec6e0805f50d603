package extract

import (
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func markdownExtractText(ctx context.Context, path string, opts Options) (string, error) {
	b, err := readFileLimit(path, opts.maxFileBytes())
	if err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	src, err := decodeText(b)
	if err != nil {
		return "", err
	}
	return markdownPlainText([]byte(src))
}

// markdownPlainText renders the prose of a markdown document. Every block
// ends on its own line so sentence breaking does not run headings into
// paragraphs. Code blocks and raw HTML are dropped.
func markdownPlainText(src []byte) (string, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var sb strings.Builder
	// A line break inside a block becomes a space, but only once more text
	// follows in the same block.
	space := false
	write := func(b []byte) {
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.Write(b)
	}
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if entering {
				write(node.Segment.Value(src))
				space = node.SoftLineBreak() || node.HardLineBreak()
			}
		case *ast.String:
			if entering {
				write(node.Value)
			}
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			if !entering {
				sb.WriteByte('\n')
				space = false
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
