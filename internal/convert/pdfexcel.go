// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/docconv/pkg/types"
)

// pdfToExcel writes every non-blank text line of the PDF as one row in
// column A of a single worksheet, in page-then-line order. A page whose text
// cannot be extracted is skipped and counted.
func (w *Worker) pdfToExcel(ctx context.Context, job types.ConversionJob, report func(int), log *slog.Logger) (string, int, error) {
	doc, err := w.openPDF(job.SourcePath)
	if err != nil {
		return "", 0, err
	}
	defer doc.Close()

	book := excelize.NewFile()
	defer book.Close()
	sheet := book.GetSheetName(0)

	total := doc.NumPage()
	if total <= 0 {
		return "", 0, fmt.Errorf("%w: %s", ErrEmptyDocument, job.SourcePath)
	}
	track := newTracker(total, report)
	row, skipped := 1, 0

	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			return "", skipped, cancelled(err)
		}

		text, err := doc.PageText(page)
		if err != nil {
			skipped++
			log.Debug("skipping page", "page", page, "error", err)
			track.step()
			continue
		}

		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimRight(line, "\r")
			if strings.TrimSpace(line) == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return "", skipped, fmt.Errorf("row %d: %w", row, err)
			}
			if err := book.SetCellStr(sheet, cell, line); err != nil {
				return "", skipped, fmt.Errorf("writing %s: %w", cell, err)
			}
			row++
		}
		track.step()
	}

	if err := book.SaveAs(job.DestinationPath); err != nil {
		return "", skipped, fmt.Errorf("saving workbook %s: %w", job.DestinationPath, err)
	}
	return job.DestinationPath, skipped, nil
}
