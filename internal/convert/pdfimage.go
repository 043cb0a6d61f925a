// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/docconv/pkg/types"
)

// imageFormat picks the raster format from the destination extension,
// falling back to the configured default. It returns the pdftoppm flag, the
// extension pdftoppm writes, and the extension to use for output files.
func imageFormat(dst string, fallback types.ImageFormat) (flag, toolExt, outExt string) {
	ext := strings.ToLower(filepath.Ext(dst))
	switch ext {
	case ".png":
		return "-png", ".png", ext
	case ".jpg", ".jpeg":
		return "-jpeg", ".jpg", ext
	}
	if fallback == types.ImageJPEG {
		return "-jpeg", ".jpg", ".jpg"
	}
	return "-png", ".png", ".png"
}

// pdfToImage renders every page at the configured DPI. A destination without
// a raster extension gets the configured format's extension. A one-page
// document is written at the destination itself. Longer documents go into a directory
// named after the destination stem, one numbered file per page.
func (w *Worker) pdfToImage(ctx context.Context, job types.ConversionJob, report func(int)) (string, error) {
	pages, err := countPages(w.openPDF, job.SourcePath)
	if err != nil {
		return "", err
	}

	dst := job.DestinationPath
	flag, toolExt, outExt := imageFormat(dst, w.cfg.ImageFormat)
	if ext := filepath.Ext(dst); !strings.EqualFold(ext, outExt) {
		dst = strings.TrimSuffix(dst, ext) + outExt
	}

	result := dst
	targets := []string{dst}
	if pages > 1 {
		name := stem(dst)
		result = filepath.Join(filepath.Dir(dst), name)
		if err := os.MkdirAll(result, 0o755); err != nil {
			return "", fmt.Errorf("creating image directory %s: %w", result, err)
		}
		targets = make([]string, pages)
		for i := range targets {
			targets[i] = filepath.Join(result, fmt.Sprintf("%s_%d%s", name, i+1, outExt))
		}
	}

	track := newTracker(pages, report)
	dpi := strconv.Itoa(w.cfg.ImageDPI)

	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			return "", cancelled(err)
		}
		page := strconv.Itoa(i + 1)
		prefix := strings.TrimSuffix(target, filepath.Ext(target))

		err := w.tools.Run(ctx, w.pdftoppm,
			"-r", dpi, "-f", page, "-l", page, "-singlefile", flag,
			job.SourcePath, prefix)
		if err != nil {
			if ctx.Err() != nil {
				return "", cancelled(ctx.Err())
			}
			return "", fmt.Errorf("rendering page %s: %w", page, err)
		}

		if produced := prefix + toolExt; produced != target {
			if err := os.Rename(produced, target); err != nil {
				return "", fmt.Errorf("moving page %s to %s: %w", page, target, err)
			}
		}
		if err := verifyImage(target); err != nil {
			return "", fmt.Errorf("rendering page %s: %w", page, err)
		}
		track.step()
	}
	return result, nil
}

// verifyImage checks that path decodes as a known raster format.
func verifyImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("decoding %s: empty image", path)
	}
	return nil
}
