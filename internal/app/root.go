// Package app wires configuration, logging and the search, render and
// server packages into the snip command line.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"snippet_find/internal/cache"
	"snippet_find/internal/config"
	"snippet_find/internal/logging"
	"snippet_find/internal/render"
	"snippet_find/internal/search"
)

// env is the state shared by every subcommand once the persistent flags
// have been resolved.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
}

// Execute runs the snip command line against the process streams.
func Execute(ctx context.Context) error {
	return NewRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
}

func NewRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	e := &env{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "snip",
		Short: "Extract readable snippets around search terms",
		Long: `snip cuts short, readable excerpts out of documents, centred on the
terms you search for. Sentences are kept whole where possible and long
ones are trimmed around the first match.

Text, markdown, OOXML (docx/xlsx/pptx) and PDF files are supported.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(cmd.Flags())
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&e.configPath, "config", "", "Path to config file")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&e.logFormat, "log-format", "", "Log format: text or json")

	root.AddCommand(
		newTextCmd(e),
		newFindCmd(e),
		newWorkerCmd(e),
		newServeCmd(e),
	)
	return root
}

func (e *env) load(flags *pflag.FlagSet) error {
	var (
		cfg *config.Config
		err error
	)
	if e.configPath != "" {
		cfg, err = config.LoadFrom(e.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = e.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = e.logFormat
	}
	e.cfg = cfg
	e.logger = logging.New(e.stderr, logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return nil
}

// snippetFlags are shared by the commands that build snippets.
type snippetFlags struct {
	terms     []string
	minLength int
	maxLength int
	lookahead int
	sentences string
	format    string
}

func (f *snippetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.terms, "term", "t", nil, "Search term (repeatable)")
	cmd.Flags().IntVar(&f.minLength, "min-length", 0, "Sentences shorter than this are merged with the next one")
	cmd.Flags().IntVar(&f.maxLength, "max-length", 0, "Longer snippets are trimmed around the first match")
	cmd.Flags().IntVar(&f.lookahead, "lookahead", 0, "Words kept before the first match when trimming")
	cmd.Flags().StringVar(&f.sentences, "sentences", "", "Sentence breaker: uax29 or punctuation")
	cmd.Flags().StringVar(&f.format, "format", "", "Output format: text, json, jsonl or yaml")
}

// apply copies explicitly set flags over the loaded configuration.
func (f *snippetFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("min-length") {
		cfg.Snippets.MinLength = f.minLength
	}
	if flags.Changed("max-length") {
		cfg.Snippets.MaxLength = f.maxLength
	}
	if flags.Changed("lookahead") {
		cfg.Snippets.Lookahead = f.lookahead
	}
	if flags.Changed("sentences") {
		if _, err := config.ParseBreaker(f.sentences); err != nil {
			return err
		}
		cfg.Snippets.Sentences = f.sentences
	}
	if flags.Changed("format") {
		cfg.Output.Format = f.format
	}
	return nil
}

func (e *env) renderer() (*render.Renderer, error) {
	format, err := render.ParseFormat(e.cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	return render.New(e.stdout, render.Options{
		Format:    format,
		Color:     e.cfg.Output.Color,
		MarkOpen:  e.cfg.Output.MarkOpen,
		MarkClose: e.cfg.Output.MarkClose,
	}), nil
}

// searchConfig builds a search configuration from the loaded settings.
func (e *env) searchConfig(terms, roots []string, useCache bool) search.Config {
	sc := search.Config{
		Roots:    roots,
		Terms:    terms,
		Workers:  e.cfg.Search.Workers,
		Snippets: e.cfg.SnippetConfig(),
		Breaker:  e.cfg.Breaker(),
		Extract:  e.cfg.ExtractOptions(),
		Logger:   e.logger,
	}
	if useCache && e.cfg.Search.Cache && e.cfg.Search.CacheDir != "" {
		sc.Cache = &cache.Cache{
			Root:         e.cfg.Search.CacheDir,
			MaxTextBytes: e.cfg.Search.MaxTextBytes,
			Logger:       e.logger,
		}
	}
	return sc
}
