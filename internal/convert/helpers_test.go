// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docconv/internal/capability"
	"github.com/pdiddy/docconv/internal/toolchain"
	"github.com/pdiddy/docconv/pkg/types"
)

// fakePDF is an in-memory PageSource. Pages listed in errs fail extraction.
type fakePDF struct {
	pages  []string
	errs   map[int]error
	onText func(n int)
	closed bool
}

func (f *fakePDF) NumPage() int { return len(f.pages) }

func (f *fakePDF) PageText(n int) (string, error) {
	if f.onText != nil {
		f.onText(n)
	}
	if err, ok := f.errs[n]; ok {
		return "", err
	}
	return f.pages[n-1], nil
}

func (f *fakePDF) Close() error {
	f.closed = true
	return nil
}

// fakeTools stands in for LibreOffice and pdftoppm. It writes plausible
// output files and records every invocation.
type fakeTools struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (f *fakeTools) Run(_ context.Context, t toolchain.Tool, args ...string) error {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{t.Name}, args...))
	f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	switch t.Name {
	case "pdftoppm":
		// -r dpi -f n -l n -singlefile -png|-jpeg src prefix
		page, _ := strconv.Atoi(argAfter(args, "-f"))
		ext := ".png"
		if contains(args, "-jpeg") {
			ext = ".jpg"
		}
		prefix := args[len(args)-1]
		return writePNG(prefix+ext, page)
	case "soffice":
		outdir := argAfter(args, "--outdir")
		src := args[len(args)-1]
		name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".docx"
		return os.WriteFile(filepath.Join(outdir, name), []byte("PK fake docx"), 0o644)
	}
	return fmt.Errorf("unexpected tool %s", t.Name)
}

func (f *fakeTools) callsFor(name string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]string
	for _, c := range f.calls {
		if c[0] == name {
			out = append(out, c[1:])
		}
	}
	return out
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func contains(args []string, s string) bool {
	for _, a := range args {
		if a == s {
			return true
		}
	}
	return false
}

// writePNG writes a PNG whose width encodes the page number, so tests can
// check page order.
func writePNG(path string, page int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, image.NewGray(image.Rect(0, 0, page, 2)))
}

func imageWidth(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width
}

// newTestWorker builds a worker with every capability and fake backends.
func newTestWorker(t *testing.T, doc *fakePDF, tools *fakeTools) *Worker {
	t.Helper()
	w := NewWorker(capability.Full(), types.ConvertConfig{}, tools,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	w.openPDF = func(string) (PageSource, error) {
		if doc == nil {
			return nil, errors.New("no document")
		}
		return doc, nil
	}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }
	return w
}

// touch creates a file with placeholder content and returns its path.
func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("placeholder"), 0o644))
	return p
}

// recorder collects progress values.
type recorder struct {
	values []int
}

func (r *recorder) report(p int) { r.values = append(r.values, p) }

// writeDocx builds a minimal .docx with one w:p per paragraph.
func writeDocx(t *testing.T, path string, paragraphs ...string) {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		if p == "" {
			body.WriteString(`<w:p/>`)
			continue
		}
		fmt.Fprintf(&body, `<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, p)
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	zw := zip.NewWriter(f)
	part, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = part.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}
