// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docconv/pkg/types"
)

// pdfToWord converts the whole document with a single LibreOffice call. The
// output lands in a scratch directory next to the destination and is then
// renamed into place.
func (w *Worker) pdfToWord(ctx context.Context, job types.ConversionJob) (string, error) {
	pages, err := countPages(w.openPDF, job.SourcePath)
	if err != nil {
		return "", err
	}
	w.log.Debug("pdf opened", "job", job.ID, "pages", pages)

	scratch, err := os.MkdirTemp(filepath.Dir(job.DestinationPath), ".docconv-")
	if err != nil {
		return "", fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	// Each run gets its own LibreOffice profile directory.
	args := []string{
		"-env:UserInstallation=" + fileURL(filepath.Join(scratch, "profile")),
		"--headless",
		"--infilter=writer_pdf_import",
		"--convert-to", "docx:MS Word 2007 XML",
		"--outdir", scratch,
		job.SourcePath,
	}
	if err := w.tools.Run(ctx, w.soffice, args...); err != nil {
		if ctx.Err() != nil {
			return "", cancelled(ctx.Err())
		}
		return "", err
	}

	produced := filepath.Join(scratch, stem(job.SourcePath)+".docx")
	if _, err := os.Stat(produced); err != nil {
		return "", fmt.Errorf("LibreOffice produced no output for %s", job.SourcePath)
	}
	if err := os.Rename(produced, job.DestinationPath); err != nil {
		return "", fmt.Errorf("moving output to %s: %w", job.DestinationPath, err)
	}
	return job.DestinationPath, nil
}

// fileURL renders path as a file:// URL.
func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
