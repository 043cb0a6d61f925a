// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/pdiddy/docconv/pkg/types"
)

const (
	bodyFont     = "body"
	bodyFontSize = 12
	lineHeightMM = 10
)

// wordToPDF lays the document's paragraphs out on A4 pages with automatic
// line wrapping. Blank paragraphs become a vertical gap.
func (w *Worker) wordToPDF(ctx context.Context, job types.ConversionJob, report func(int)) (string, error) {
	paras, err := w.readWord(job.SourcePath)
	if err != nil {
		return "", err
	}

	fontPath, err := findFont(w.cfg.FontPaths)
	if err != nil {
		return "", err
	}
	fontData, err := os.ReadFile(fontPath)
	if err != nil {
		return "", fmt.Errorf("reading font %s: %w", fontPath, err)
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddUTF8FontFromBytes(bodyFont, "", fontData)
	doc.SetFont(bodyFont, "", bodyFontSize)
	doc.AddPage()
	if err := doc.Error(); err != nil {
		return "", fmt.Errorf("loading font %s: %w", fontPath, err)
	}

	gap := w.cfg.ParagraphGapMM
	track := newTracker(len(paras), report)

	for _, p := range paras {
		if err := ctx.Err(); err != nil {
			return "", cancelled(err)
		}
		if strings.TrimSpace(p) != "" {
			doc.MultiCell(0, lineHeightMM, p, "", "L", false)
		}
		doc.Ln(gap)
		if err := doc.Error(); err != nil {
			return "", fmt.Errorf("writing PDF: %w", err)
		}
		track.step()
	}

	if err := doc.OutputFileAndClose(job.DestinationPath); err != nil {
		return "", fmt.Errorf("saving PDF %s: %w", job.DestinationPath, err)
	}
	return job.DestinationPath, nil
}

// findFont returns the first path in candidates that is an existing file.
func findFont(candidates []string) (string, error) {
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w (tried: %s)", ErrNoFont, strings.Join(candidates, ", "))
}
