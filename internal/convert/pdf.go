// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageSource is a page-addressable PDF. Pages are numbered from 1.
type PageSource interface {
	NumPage() int
	// PageText returns the text layer of page n, one line per "\n".
	PageText(n int) (string, error)
	Close() error
}

// pdfDocument implements PageSource with ledongthuc/pdf.
type pdfDocument struct {
	f *os.File
	r *pdf.Reader
}

// openPDF opens path for page access. The parser panics on some malformed
// files, so panics are turned into errors.
func openPDF(path string) (src PageSource, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("opening PDF %s: %v", path, rec)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	return &pdfDocument{f: f, r: r}, nil
}

func (d *pdfDocument) NumPage() int {
	return d.r.NumPage()
}

func (d *pdfDocument) PageText(n int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page %d: %v", n, rec)
		}
	}()

	p := d.r.Page(n)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d: no page object", n)
	}
	return joinLines(p.Content().Text), nil
}

// lineTolerance is how far, in points, a glyph's baseline may sit from the
// first glyph of its line.
const lineTolerance = 2.0

// joinLines groups glyphs into lines by baseline. Glyphs keep content
// stream order within a line.
func joinLines(glyphs []pdf.Text) string {
	var b strings.Builder
	var y float64
	for i, g := range glyphs {
		switch {
		case i == 0:
			y = g.Y
		case math.Abs(g.Y-y) > lineTolerance:
			b.WriteByte('\n')
			y = g.Y
		}
		b.WriteString(g.S)
	}
	return b.String()
}

func (d *pdfDocument) Close() error {
	return d.f.Close()
}

// countPages opens path just long enough to read its page count.
func countPages(open func(string) (PageSource, error), path string) (int, error) {
	doc, err := open(path)
	if err != nil {
		return 0, err
	}
	defer doc.Close()

	n := doc.NumPage()
	if n <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrEmptyDocument, path)
	}
	return n, nil
}
