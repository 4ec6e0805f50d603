package extract

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func writeZip(t *testing.T, name string, entries map[string]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for entry, body := range entries {
		w, err := zw.Create(entry)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFileExtractText_TextEncodings(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{name: "plain.txt", data: []byte("plain text"), want: "plain text"},
		{name: "bom8.txt", data: []byte("\xEF\xBB\xBFhello"), want: "hello"},
		// "hé" in UTF-16LE with BOM.
		{name: "le.txt", data: []byte{0xFF, 0xFE, 'h', 0, 0xE9, 0}, want: "h\u00e9"},
		// "hé" in UTF-16BE with BOM.
		{name: "be.txt", data: []byte{0xFE, 0xFF, 0, 'h', 0, 0xE9}, want: "h\u00e9"},
		{name: "nfc.log", data: []byte("e\u0301cole"), want: "\u00e9cole"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := writeFile(t, tc.name, tc.data)
			got, err := FileExtractText(context.Background(), p, Options{})
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("unexpected text: %q", got)
			}
		})
	}
}

func TestFileExtractText_Unsupported(t *testing.T) {
	p := writeFile(t, "image.png", []byte{0x89, 'P', 'N', 'G'})
	if Supported(p) {
		t.Fatalf("png should not be supported")
	}
	if _, err := FileExtractText(context.Background(), p, Options{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	for _, name := range []string{"a.TXT", "b.md", "c.Markdown", "d.docx", "e.pdf"} {
		if !Supported(name) {
			t.Fatalf("%s should be supported", name)
		}
	}
}

func TestFileExtractText_FileTooLarge(t *testing.T) {
	p := writeFile(t, "big.txt", []byte("0123456789"))
	_, err := FileExtractText(context.Background(), p, Options{MaxFileBytes: 4})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestFileExtractText_CapsOutput(t *testing.T) {
	p := writeFile(t, "cap.txt", []byte("你a好"))
	got, err := FileExtractText(context.Background(), p, Options{MaxBytes: 5})
	if err != nil {
		t.Fatal(err)
	}
	if got != "你a" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestFileExtractText_Cancelled(t *testing.T) {
	p := writeFile(t, "a.txt", []byte("text"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FileExtractText(ctx, p, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMarkdownPlainText(t *testing.T) {
	src := "# Title\n\nFirst para\nline two with *emphasis*.\n\n```go\nfunc main() {}\n```\n\n- item one\n- item two\n"
	got, err := markdownPlainText([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	want := "Title\nFirst para line two with emphasis.\nitem one\nitem two\n"
	if got != want {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestFileExtractText_Markdown(t *testing.T) {
	p := writeFile(t, "notes.md", []byte("Intro line.\n\n    indented code\n\nOutro.\n"))
	got, err := FileExtractText(context.Background(), p, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Intro line.\nOutro.\n" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestFileExtractText_DOCX(t *testing.T) {
	const ns = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`
	p := writeZip(t, "doc.docx", map[string]string{
		"word/document.xml": `<?xml version="1.0"?><w:document ` + ns + `><w:body>` +
			`<w:p><w:r><w:t>Hello </w:t></w:r><w:r><w:t>world.</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t>Second.</w:t></w:r></w:p>` +
			`</w:body></w:document>`,
		"word/styles.xml": `<w:styles ` + ns + `><w:name>Ignored</w:name></w:styles>`,
	})
	got, err := FileExtractText(context.Background(), p, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello world.\nSecond.\n" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestFileExtractText_XLSXSharedStrings(t *testing.T) {
	p := writeZip(t, "book.xlsx", map[string]string{
		"xl/sharedStrings.xml": `<sst><si><t>Name</t></si><si><t>Value</t></si></sst>`,
	})
	got, err := FileExtractText(context.Background(), p, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Name\nValue\n" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestFileExtractText_PDFSizeLimit(t *testing.T) {
	p := writeFile(t, "big.pdf", []byte("%PDF-1.4 not really a pdf"))
	_, err := FileExtractText(context.Background(), p, Options{PDF: PDFOptions{MaxFileBytes: 8}})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestFileExtractText_PDFInvalid(t *testing.T) {
	p := writeFile(t, "broken.pdf", []byte("not a pdf at all"))
	_, err := FileExtractText(context.Background(), p, Options{})
	if err == nil || errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected a parse error, got %v", err)
	}
}

func TestPageWriter(t *testing.T) {
	w := &pageWriter{limit: 12}
	if w.add("page one") {
		t.Fatalf("budget should not be exhausted yet")
	}
	if w.add("") {
		t.Fatalf("empty page should not exhaust the budget")
	}
	if !w.add("page two\n") {
		t.Fatalf("budget should be exhausted")
	}
	if got := w.sb.String(); got != "page one\npage two\n" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestPDFOptions_Defaults(t *testing.T) {
	var o PDFOptions
	if o.pageWorkers() != 1 {
		t.Fatalf("expected sequential extraction by default, got %d", o.pageWorkers())
	}
	if o.maxFileBytes() != defaultMaxFileBytes {
		t.Fatalf("unexpected default: %d", o.maxFileBytes())
	}
	o = PDFOptions{PageWorkers: 4, MaxFileBytes: 10}
	if o.pageWorkers() != 4 || o.maxFileBytes() != 10 {
		t.Fatalf("explicit values ignored: %+v", o)
	}
}

func TestTruncateUTF8(t *testing.T) {
	// "你" is 3 bytes in UTF-8.
	s := "你a"
	if got := TruncateUTF8(s, 1); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if got := TruncateUTF8(s, 3); got != "你" {
		t.Fatalf("expected %q, got %q", "你", got)
	}
	if got := TruncateUTF8(s, 4); got != "你a" {
		t.Fatalf("expected %q, got %q", "你a", got)
	}
	if got := TruncateUTF8(s, 0); got != s {
		t.Fatalf("non-positive limit should keep the text, got %q", got)
	}
}

func TestReadText(t *testing.T) {
	got, err := ReadText(strings.NewReader("\ufeffe\u0301cole"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "\u00e9cole" {
		t.Fatalf("unexpected text: %q", got)
	}

	got, err = ReadText(strings.NewReader("你a好"), Options{MaxBytes: 5})
	if err != nil {
		t.Fatal(err)
	}
	if got != "你a" {
		t.Fatalf("unexpected text: %q", got)
	}

	_, err = ReadText(strings.NewReader("0123456789"), Options{MaxFileBytes: 4})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}
