package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
)

func pdfOpen(path string) (*os.File, *pdf.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	r, err := pdf.NewReader(f, fi.Size())
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return f, r, nil
}

func pdfExtractText(ctx context.Context, path string, opts Options) (string, error) {
	// Pure Go PDF parsing can use a lot of memory on big files, so refuse
	// those up front.
	st, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if st.Size() > opts.PDF.maxFileBytes() {
		return "", fmt.Errorf("%s: %d bytes: %w", path, st.Size(), ErrTooLarge)
	}

	f, r, err := pdfOpen(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	maxBytes := opts.maxBytes()
	workers := opts.PDF.pageWorkers()
	if workers <= 1 {
		return pdfExtractTextSequential(ctx, r, maxBytes)
	}
	return pdfExtractTextParallel(ctx, r, maxBytes, workers)
}

func pageText(p pdf.Page, fonts map[string]*pdf.Font) (string, error) {
	if p.V.IsNull() {
		return "", nil
	}
	for _, name := range p.Fonts() {
		if _, ok := fonts[name]; ok {
			continue
		}
		f := p.Font(name)
		fonts[name] = &f
	}
	return p.GetPlainText(fonts)
}

// pageWriter accumulates page texts in order, one page per line, up to a
// byte budget.
type pageWriter struct {
	sb    strings.Builder
	limit int64
}

// add reports whether the budget is exhausted.
func (w *pageWriter) add(text string) bool {
	if text != "" {
		w.sb.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			w.sb.WriteByte('\n')
		}
	}
	return int64(w.sb.Len()) >= w.limit
}

func pdfExtractTextSequential(ctx context.Context, r *pdf.Reader, maxBytes int64) (string, error) {
	w := &pageWriter{limit: maxBytes}
	fonts := make(map[string]*pdf.Font)
	pages := r.NumPage()
	for i := 1; i <= pages; i++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		text, err := pageText(r.Page(i), fonts)
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		if w.add(text) {
			break
		}
	}
	return w.sb.String(), nil
}

func pdfExtractTextParallel(ctx context.Context, r *pdf.Reader, maxBytes int64, workers int) (string, error) {
	type pageResult struct {
		page int
		text string
		err  error
	}

	pages := r.NumPage()
	if pages <= 1 {
		return pdfExtractTextSequential(ctx, r, maxBytes)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int, workers*2)
	results := make(chan pageResult, workers*2)

	go func() {
		defer close(jobs)
		for i := 1; i <= pages; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			// Per-worker font cache; avoids cross-goroutine map races.
			fonts := make(map[string]*pdf.Font)
			for pageNum := range jobs {
				if ctx.Err() != nil {
					return
				}
				text, err := pageText(r.Page(pageNum), fonts)
				select {
				case results <- pageResult{page: pageNum, text: text, err: err}:
				case <-ctx.Done():
					return
				}
				if err != nil {
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	w := &pageWriter{limit: maxBytes}
	nextPage := 1
	pending := make(map[int]string, workers*2)
	for res := range results {
		if res.err != nil {
			return "", fmt.Errorf("pdf page %d: %w", res.page, res.err)
		}
		pending[res.page] = res.text

		for {
			text, ok := pending[nextPage]
			if !ok {
				break
			}
			delete(pending, nextPage)
			nextPage++
			if w.add(text) || nextPage > pages {
				return w.sb.String(), nil
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return w.sb.String(), nil
}
