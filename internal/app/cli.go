package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"snippet_find/internal/search"
)

type findFlags struct {
	snippetFlags
	roots   []string
	workers int
	noCache bool
}

func (f *findFlags) register(cmd *cobra.Command) {
	f.snippetFlags.register(cmd)
	cmd.Flags().StringArrayVar(&f.roots, "root", nil, "Directory to search; repeatable, or several joined with ;")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Concurrent workers (default: number of CPUs)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Do not read or write the extracted-text cache")
}

// searchConfig resolves roots and worker count on top of the loaded config.
func (f *findFlags) searchConfig(cmd *cobra.Command, e *env) (search.Config, error) {
	if err := f.apply(cmd, e.cfg); err != nil {
		return search.Config{}, err
	}
	if cmd.Flags().Changed("workers") {
		e.cfg.Search.Workers = f.workers
	}
	roots := parseRoots(f.roots)
	if len(roots) == 0 {
		roots = parseRoots(e.cfg.Search.Roots)
	}
	for i := range roots {
		if abs, err := filepath.Abs(roots[i]); err == nil {
			roots[i] = abs
		}
	}
	return e.searchConfig(f.terms, roots, !f.noCache), nil
}

func newFindCmd(e *env) *cobra.Command {
	var f findFlags
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Search directory trees and print the snippets of every matching file",
		Example: `  snip find --root ~/Documents -t contract -t "A-001"
  snip find --root "/srv/a;/srv/b" -t invoice --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.searchConfig(cmd, e)
			if err != nil {
				return err
			}
			r, err := e.renderer()
			if err != nil {
				return err
			}

			if e.cfg.Output.Format == "text" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Roots: %s\n", strings.Join(cfg.Roots, "; "))
				fmt.Fprintf(cmd.ErrOrStderr(), "Terms: %s\n", strings.Join(cleanTerms(cfg.Terms), ", "))
			}
			results, err := search.Find(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			return r.Results(results)
		},
	}
	f.register(cmd)
	return cmd
}

// parseRoots trims every root and splits values joined with ';'.
func parseRoots(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, p := range strings.Split(v, ";") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
