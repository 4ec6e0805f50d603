// Package search walks directory trees, extracts the text of every
// supported document and reports the snippets found for a set of terms.
package search

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"snippet_find/internal/cache"
	"snippet_find/internal/extract"
	"snippet_find/internal/logging"
	"snippet_find/pkg/snippets"
)

var (
	ErrNoTerms = errors.New("search: no search terms")
	ErrNoRoots = errors.New("search: no roots")
)

type Config struct {
	Roots    []string
	Terms    []string
	Workers  int
	Snippets snippets.Config
	// Breaker overrides the default UAX#29 sentence breaker.
	Breaker snippets.Breaker
	Extract extract.Options
	// Cache is optional; nil extracts every file on every search.
	Cache  *cache.Cache
	Logger *slog.Logger
}

func (c Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 4
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logging.Discard()
}

func (c Config) builder() *snippets.Builder {
	b := snippets.New(c.Snippets)
	if c.Breaker != nil {
		b = b.WithBreaker(c.Breaker)
	}
	return b
}

func (c Config) validate() error {
	if len(cleanTerms(c.Terms)) == 0 {
		return ErrNoTerms
	}
	if len(cleanRoots(c.Roots)) == 0 {
		return ErrNoRoots
	}
	return nil
}

type Result struct {
	Path      string             `json:"path" yaml:"path"`
	Extension string             `json:"extension" yaml:"extension"`
	Size      int64              `json:"size" yaml:"size"`
	ModTime   int64              `json:"mod_time" yaml:"mod_time"`
	Snippets  []snippets.Snippet `json:"snippets" yaml:"snippets"`
}

type Progress struct {
	FilesScanned uint64
	Matches      uint64
	Errors       uint64
}

type ProgressFn func(Progress)

type ResultFn func(Result)

// Find runs Search and returns every result sorted by path.
func Find(ctx context.Context, cfg Config, onProgress ProgressFn) ([]Result, error) {
	results := make([]Result, 0, 256)
	mu := sync.Mutex{}
	err := Search(ctx, cfg, onProgress, func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

// Search scans cfg.Roots and calls onResult for every file with at least
// one snippet. Callbacks run on the calling goroutine for results and on
// worker goroutines for progress. A file that cannot be read is counted in
// Progress.Errors and skipped. Search returns once every file is done or
// ctx is cancelled.
func Search(ctx context.Context, cfg Config, onProgress ProgressFn, onResult ResultFn) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	log := cfg.logger()
	builder := cfg.builder()
	terms := cleanTerms(cfg.Terms)
	workers := cfg.WorkerCount()

	var scanned, matches, failed uint64
	report := func() {
		if onProgress != nil {
			onProgress(Progress{
				FilesScanned: atomic.LoadUint64(&scanned),
				Matches:      atomic.LoadUint64(&matches),
				Errors:       atomic.LoadUint64(&failed),
			})
		}
	}

	jobs := make(chan string, workers*4)
	resCh := make(chan Result, workers*2)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		return walkRoots(gctx, cleanRoots(cfg.Roots), jobs, log)
	})

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			defer wg.Done()
			for path := range jobs {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				r, err := searchFile(gctx, cfg, builder, terms, path)
				atomic.AddUint64(&scanned, 1)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					atomic.AddUint64(&failed, 1)
					log.Debug("skip file", "path", path, "error", err)
					report()
					continue
				}
				if len(r.Snippets) > 0 {
					atomic.AddUint64(&matches, 1)
				}
				report()
				if len(r.Snippets) == 0 {
					continue
				}
				select {
				case resCh <- r:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	go func() {
		wg.Wait()
		close(resCh)
	}()

	for r := range resCh {
		if onResult != nil {
			onResult(r)
		}
	}
	err := g.Wait()
	log.Info("search finished",
		"files", atomic.LoadUint64(&scanned),
		"matches", atomic.LoadUint64(&matches),
		"errors", atomic.LoadUint64(&failed))
	if err != nil {
		return err
	}
	return ctx.Err()
}

// SearchFile extracts one file and builds its snippets. Unlike Search it
// accepts any path, including unsupported extensions, and reports their
// error.
func SearchFile(ctx context.Context, cfg Config, path string) (Result, error) {
	terms := cleanTerms(cfg.Terms)
	if len(terms) == 0 {
		return Result{}, ErrNoTerms
	}
	return searchFile(ctx, cfg, cfg.builder(), terms, path)
}

func searchFile(ctx context.Context, cfg Config, builder *snippets.Builder, terms []string, path string) (Result, error) {
	text, err := cfg.Cache.GetOrExtract(ctx, path, func(ctx context.Context, path string) (string, error) {
		return extract.FileExtractText(ctx, path, cfg.Extract)
	})
	if err != nil {
		return Result{}, err
	}
	r := Result{
		Path:      path,
		Extension: strings.ToLower(filepath.Ext(path)),
		Snippets:  builder.Build(text, terms),
	}
	if st, err := os.Stat(path); err == nil {
		r.Size = st.Size()
		r.ModTime = st.ModTime().Unix()
	}
	return r, nil
}

func walkRoots(ctx context.Context, roots []string, jobs chan<- string, log *slog.Logger) error {
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Debug("walk error", "path", path, "error", err)
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() || !extract.Supported(d.Name()) {
				return nil
			}
			select {
			case jobs <- path:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
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

func cleanRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
