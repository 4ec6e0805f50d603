// Package cache keeps extracted document text on disk so repeated searches
// skip the expensive PDF and OOXML parsing.
package cache

import (
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"snippet_find/internal/extract"
	"snippet_find/internal/logging"
)

type Extractor func(ctx context.Context, path string) (string, error)

// headerSize is the mtime (UnixNano) and size prefix, little endian.
const headerSize = 16

type Cache struct {
	Root         string
	MaxTextBytes int64
	Logger       *slog.Logger
}

func (c *Cache) effectiveMaxTextBytes() int64 {
	if c.MaxTextBytes > 0 {
		return c.MaxTextBytes
	}
	return 2 * 1024 * 1024
}

func (c *Cache) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logging.Discard()
}

func (c *Cache) cachePath(absPath string) string {
	h := sha256.Sum256([]byte(absPath))
	hexsum := hex.EncodeToString(h[:])
	return filepath.Join(c.Root, hexsum[:2], hexsum+".bin")
}

// GetOrExtract returns the cached text for absPath when the file's size
// and mtime still match, otherwise it runs extractor and stores the
// result. A nil Cache always extracts. Failing to write the cache is
// logged, not returned.
func (c *Cache) GetOrExtract(ctx context.Context, absPath string, extractor Extractor) (string, error) {
	if extractor == nil {
		return "", errors.New("cache: extractor is nil")
	}
	if c == nil {
		return extractor(ctx, absPath)
	}
	st, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}
	if !st.Mode().IsRegular() {
		return "", errors.New("cache: not a regular file")
	}

	cp := c.cachePath(absPath)
	if text, ok := c.tryRead(cp, st.Size(), st.ModTime()); ok {
		c.logger().Debug("cache hit", "path", absPath)
		return text, nil
	}

	text, err := extractor(ctx, absPath)
	if err != nil {
		return "", err
	}
	text = extract.TruncateUTF8(text, c.effectiveMaxTextBytes())
	if err := c.write(cp, st.Size(), st.ModTime(), text); err != nil {
		c.logger().Warn("cache write failed", "path", absPath, "error", err)
	}
	return text, nil
}

func (c *Cache) tryRead(path string, size int64, mtime time.Time) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	hdr := make([]byte, headerSize)
	if _, err := io.ReadFull(f, hdr); err != nil {
		return "", false
	}
	cachedM := int64(binary.LittleEndian.Uint64(hdr[0:8]))
	cachedS := int64(binary.LittleEndian.Uint64(hdr[8:16]))
	if cachedS != size || cachedM != mtime.UnixNano() {
		return "", false
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		return "", false
	}
	defer zr.Close()
	maxBytes := c.effectiveMaxTextBytes()
	b, err := io.ReadAll(io.LimitReader(zr, maxBytes+1))
	if err != nil {
		return "", false
	}
	return extract.TruncateUTF8(string(b), maxBytes), true
}

func (c *Cache) write(path string, size int64, mtime time.Time, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(tmp)
	}()

	hdr := make([]byte, headerSize)
	binary.LittleEndian.PutUint64(hdr[0:8], uint64(mtime.UnixNano()))
	binary.LittleEndian.PutUint64(hdr[8:16], uint64(size))
	if _, err := f.Write(hdr); err != nil {
		return err
	}

	zw := gzip.NewWriter(f)
	_, err = io.WriteString(zw, text)
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
