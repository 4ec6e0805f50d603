package app

import (
	"github.com/spf13/cobra"

	"snippet_find/internal/render"
	"snippet_find/internal/search"
)

// newWorkerCmd is for processes that drive snip from another program:
// - JSON Lines only (one result per line) on stdout
// - no banner, results streamed as files finish
func newWorkerCmd(e *env) *cobra.Command {
	var f findFlags
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Stream search results as JSON Lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.searchConfig(cmd, e)
			if err != nil {
				return err
			}
			r := render.New(e.stdout, render.Options{Format: render.FormatJSONL})
			n := 0
			var writeErr error
			err = search.Search(cmd.Context(), cfg, nil, func(res search.Result) {
				n++
				if writeErr == nil {
					writeErr = r.Result(n, res)
				}
			})
			if err != nil {
				return err
			}
			return writeErr
		},
	}
	f.register(cmd)
	cmd.Flags().Lookup("format").Hidden = true
	return cmd
}
