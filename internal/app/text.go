package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"snippet_find/internal/extract"
	"snippet_find/internal/search"
	"snippet_find/pkg/snippets"
)

func newTextCmd(e *env) *cobra.Command {
	var f snippetFlags
	cmd := &cobra.Command{
		Use:   "text [file]",
		Short: "Print the snippets of one document or of stdin",
		Example: `  snip text -t philosophy notes.md
  curl -s https://example.org/page.txt | snip text -t science -t knowledge --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.apply(cmd, e.cfg); err != nil {
				return err
			}
			if len(cleanTerms(f.terms)) == 0 {
				return search.ErrNoTerms
			}
			r, err := e.renderer()
			if err != nil {
				return err
			}

			var out []snippets.Snippet
			if len(args) == 0 || args[0] == "-" {
				text, err := extract.ReadText(e.stdin, e.cfg.ExtractOptions())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				out = snippets.New(e.cfg.SnippetConfig()).WithBreaker(e.cfg.Breaker()).Build(text, f.terms)
			} else {
				res, err := search.SearchFile(cmd.Context(), e.searchConfig(f.terms, nil, false), args[0])
				if err != nil {
					return err
				}
				out = res.Snippets
			}
			e.logger.Debug("snippets built", "count", len(out))
			return r.Snippets(out)
		},
	}
	f.register(cmd)
	return cmd
}
