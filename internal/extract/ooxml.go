package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// ooxmlBreaks lists, per extension, the XML elements whose end starts a new
// line (paragraphs, rows, shared strings) or a new cell.
var ooxmlBreaks = map[string]map[string]byte{
	".docx": {"p": '\n', "br": '\n', "tab": ' '},
	".pptx": {"p": '\n', "br": '\n'},
	".xlsx": {"row": '\n', "si": '\n', "c": ' '},
}

func ooxmlExtractText(ctx context.Context, path string, opts Options) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	ext := strings.ToLower(filepath.Ext(path))
	limit := opts.maxBytes()
	var sb strings.Builder
	for _, f := range zr.File {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !ooxmlEntryInteresting(ext, strings.ToLower(f.Name)) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		err = xmlStreamText(ctx, rc, ooxmlBreaks[ext], &sb, limit)
		_ = rc.Close()
		if err != nil {
			return "", err
		}
		if int64(sb.Len()) >= limit {
			break
		}
	}
	return sb.String(), nil
}

func ooxmlEntryInteresting(ext, name string) bool {
	if !strings.HasSuffix(name, ".xml") {
		return false
	}
	switch ext {
	case ".docx":
		return strings.HasPrefix(name, "word/document") ||
			strings.HasPrefix(name, "word/header") ||
			strings.HasPrefix(name, "word/footer") ||
			strings.HasPrefix(name, "word/footnotes") ||
			strings.HasPrefix(name, "word/endnotes")
	case ".xlsx":
		return name == "xl/sharedstrings.xml" || strings.HasPrefix(name, "xl/worksheets/")
	case ".pptx":
		return strings.HasPrefix(name, "ppt/slides/") || strings.HasPrefix(name, "ppt/notesslides/")
	default:
		return false
	}
}

// xmlStreamText appends the character data of r to sb, stopping once sb
// holds limit bytes. A malformed part ends that part, not the document.
func xmlStreamText(ctx context.Context, r io.Reader, breaks map[string]byte, sb *strings.Builder, limit int64) error {
	dec := xml.NewDecoder(r)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var syntaxErr *xml.SyntaxError
			if errors.As(err, &syntaxErr) {
				return nil
			}
			return err
		}
		switch v := tok.(type) {
		case xml.CharData:
			sb.Write(v)
		case xml.EndElement:
			if c, ok := breaks[v.Name.Local]; ok {
				sb.WriteByte(c)
			}
		}
		if int64(sb.Len()) >= limit {
			return nil
		}
	}
}
