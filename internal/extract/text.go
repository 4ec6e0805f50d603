package extract

import (
	"context"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func textFileExtractText(ctx context.Context, path string, opts Options) (string, error) {
	b, err := readFileLimit(path, opts.maxFileBytes())
	if err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return decodeText(b)
}

// ReadText reads a text stream such as stdin with the same size cap,
// decoding and output limit as text files. A stream larger than
// opts.MaxFileBytes fails with ErrTooLarge.
func ReadText(r io.Reader, opts Options) (string, error) {
	b, err := readAllLimit(r, opts.maxFileBytes())
	if err != nil {
		return "", err
	}
	text, err := decodeText(b)
	if err != nil {
		return "", err
	}
	return TruncateUTF8(text, opts.maxBytes()), nil
}

// decodeText honours a UTF-8 or UTF-16 byte order mark, defaults to UTF-8
// and returns the text in NFC so that composed and decomposed accents
// match the same terms.
func decodeText(b []byte) (string, error) {
	t := transform.Chain(unicode.BOMOverride(unicode.UTF8.NewDecoder()), norm.NFC)
	out, _, err := transform.Bytes(t, b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
