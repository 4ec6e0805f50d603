// Package extract turns documents on disk into plain text for the snippet
// pipeline. Each reader is picked by file extension.
package extract

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnsupported is returned for extensions no reader handles.
	ErrUnsupported = errors.New("extract: unsupported file type")
	// ErrTooLarge is returned when the source file exceeds the configured cap.
	ErrTooLarge = errors.New("extract: file exceeds size limit")
)

const (
	defaultMaxBytes     = 2 * 1024 * 1024
	defaultMaxFileBytes = 20 * 1024 * 1024
)

type Options struct {
	// MaxBytes caps the extracted text. Longer output is cut on a rune boundary.
	MaxBytes int64
	// MaxFileBytes caps the raw size of text and markdown files.
	MaxFileBytes int64
	PDF          PDFOptions
}

type PDFOptions struct {
	// PageWorkers > 1 extracts pages concurrently. Page order is kept.
	PageWorkers  int
	MaxFileBytes int64
}

func (o Options) maxBytes() int64 {
	if o.MaxBytes > 0 {
		return o.MaxBytes
	}
	return defaultMaxBytes
}

func (o Options) maxFileBytes() int64 {
	if o.MaxFileBytes > 0 {
		return o.MaxFileBytes
	}
	return defaultMaxFileBytes
}

func (o PDFOptions) pageWorkers() int {
	if o.PageWorkers > 0 {
		return o.PageWorkers
	}
	return 1
}

func (o PDFOptions) maxFileBytes() int64 {
	if o.MaxFileBytes > 0 {
		return o.MaxFileBytes
	}
	return defaultMaxFileBytes
}

type reader func(ctx context.Context, path string, opts Options) (string, error)

var readers = map[string]reader{
	".txt":      textFileExtractText,
	".log":      textFileExtractText,
	".csv":      textFileExtractText,
	".json":     textFileExtractText,
	".xml":      textFileExtractText,
	".ini":      textFileExtractText,
	".yaml":     textFileExtractText,
	".yml":      textFileExtractText,
	".md":       markdownExtractText,
	".markdown": markdownExtractText,
	".docx":     ooxmlExtractText,
	".xlsx":     ooxmlExtractText,
	".pptx":     ooxmlExtractText,
	".pdf":      pdfExtractText,
}

// Supported reports whether FileExtractText has a reader for path.
func Supported(path string) bool {
	_, ok := readers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// FileExtractText extracts readable text from a supported file.
func FileExtractText(ctx context.Context, path string, opts Options) (string, error) {
	read, ok := readers[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", ErrUnsupported
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := read(ctx, path, opts)
	if err != nil {
		return "", err
	}
	return TruncateUTF8(text, opts.maxBytes()), nil
}

// TruncateUTF8 cuts s to at most maxBytes without splitting a rune.
func TruncateUTF8(s string, maxBytes int64) string {
	if maxBytes <= 0 || int64(len(s)) <= maxBytes {
		return s
	}
	cut := int(maxBytes)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
