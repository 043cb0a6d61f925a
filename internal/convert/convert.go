// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements the conversion worker. A worker runs one job at
// a time, delegating the byte-level work to PDF, spreadsheet and office
// libraries or external tools, and reports integer progress followed by a
// single terminal outcome.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/docconv/internal/capability"
	"github.com/pdiddy/docconv/internal/toolchain"
	"github.com/pdiddy/docconv/pkg/types"
)

const (
	defaultImageDPI     = 300
	defaultParagraphGap = 5.0
)

// ToolRunner executes external tools. *toolchain.Runner implements it.
type ToolRunner interface {
	Run(ctx context.Context, t toolchain.Tool, args ...string) error
}

// Worker converts documents. It holds no per-job state, so a single Worker
// may serve many jobs, one after another.
type Worker struct {
	caps  capability.Set
	cfg   types.ConvertConfig
	tools ToolRunner
	log   *slog.Logger

	soffice  toolchain.Tool
	pdftoppm toolchain.Tool

	// Seams replaced in tests.
	openPDF  func(path string) (PageSource, error)
	readWord func(path string) ([]string, error)
	remove   func(path string) error
	now      func() time.Time
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets the worker's logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *Worker) { w.log = l }
}

// NewWorker creates a worker limited to the capabilities in caps.
func NewWorker(caps capability.Set, cfg types.ConvertConfig, tools ToolRunner, opts ...Option) *Worker {
	if cfg.ImageDPI <= 0 {
		cfg.ImageDPI = defaultImageDPI
	}
	if cfg.ImageFormat == "" {
		cfg.ImageFormat = types.ImagePNG
	}
	if cfg.ParagraphGapMM <= 0 {
		cfg.ParagraphGapMM = defaultParagraphGap
	}
	if len(cfg.FontPaths) == 0 {
		cfg.FontPaths = types.DefaultFontPaths
	}

	w := &Worker{
		caps:     caps,
		cfg:      cfg,
		tools:    tools,
		log:      slog.Default(),
		soffice:  toolchain.Soffice.WithOverride(cfg.SofficePath),
		pdftoppm: toolchain.Pdftoppm.WithOverride(cfg.PdftoppmPath),
		openPDF:  openPDF,
		readWord: readParagraphs,
		remove:   os.Remove,
		now:      time.Now,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Run is the event stream of a started job. Progress is closed before the
// single Outcome is delivered; Outcome is closed after it.
type Run struct {
	Progress <-chan int
	Outcome  <-chan types.Outcome
}

// Wait drains the stream, passing each progress value to fn (which may be
// nil), and returns the outcome.
func (r Run) Wait(fn func(int)) types.Outcome {
	for p := range r.Progress {
		if fn != nil {
			fn(p)
		}
	}
	return <-r.Outcome
}

// Start runs job on a new goroutine. The caller must drain Progress until it
// closes; every value is delivered, including the final 100 of a job that
// succeeds after ctx is cancelled. Cancelling ctx stops the job between units.
func (w *Worker) Start(ctx context.Context, job types.ConversionJob) Run {
	progress := make(chan int)
	outcome := make(chan types.Outcome, 1)

	go func() {
		defer close(outcome)
		o, _ := w.Execute(ctx, job, func(p int) { progress <- p })
		close(progress)
		outcome <- o
	}()

	return Run{Progress: progress, Outcome: outcome}
}

// Execute runs job on the calling goroutine. report receives progress
// percentages in non-decreasing order, ending with 100 on success. The
// returned error is nil exactly when the outcome is a success.
func (w *Worker) Execute(ctx context.Context, job types.ConversionJob, report func(int)) (types.Outcome, error) {
	if report == nil {
		report = func(int) {}
	}
	log := w.log.With("job", job.ID, "kind", job.Kind)

	o := types.Outcome{JobID: job.ID, Kind: job.Kind, StartedAt: w.now()}
	log.Info("conversion started", "source", job.SourcePath, "destination", job.DestinationPath)

	path, skipped, err := w.execute(ctx, job, report, log)
	o.FinishedAt = w.now()
	o.Skipped = skipped
	if err != nil {
		o.Reason = err.Error()
		log.Error("conversion failed", "reason", o.Reason)
		return o, err
	}

	report(100)
	o.Success = true
	o.Path = path
	log.Info("conversion finished", "path", path, "skipped", skipped, "elapsed", o.Duration())
	return o, nil
}

// execute performs the pre-flight checks, then dispatches on kind. A panic
// from a conversion library fails the job instead of the process.
func (w *Worker) execute(ctx context.Context, job types.ConversionJob, report func(int), log *slog.Logger) (path string, skipped int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			path, err = "", fmt.Errorf("internal error: %v", rec)
		}
	}()

	if err := w.preflight(job); err != nil {
		return "", 0, err
	}
	if err := ctx.Err(); err != nil {
		return "", 0, cancelled(err)
	}

	switch job.Kind {
	case types.KindPDFToWord:
		path, err = w.pdfToWord(ctx, job)
	case types.KindPDFToExcel:
		path, skipped, err = w.pdfToExcel(ctx, job, report, log)
	case types.KindPDFToImage:
		path, err = w.pdfToImage(ctx, job, report)
	case types.KindWordToPDF:
		path, err = w.wordToPDF(ctx, job, report)
	}
	return path, skipped, err
}

// preflight rejects a job before any conversion I/O: unsupported kind,
// missing capability, unreadable source, locked destination.
func (w *Worker) preflight(job types.ConversionJob) error {
	if !supported(job.Kind) {
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, job.Kind)
	}
	if err := w.caps.Require(job.Kind); err != nil {
		return err
	}

	info, err := os.Stat(job.SourcePath)
	if err != nil {
		return fmt.Errorf("cannot read source %s: %w", job.SourcePath, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("cannot read source %s: not a regular file", job.SourcePath)
	}

	return w.clearDestination(job.DestinationPath)
}

// clearDestination removes an existing regular file at dst.
func (w *Worker) clearDestination(dst string) error {
	if dst == "" {
		return fmt.Errorf("%w: empty destination", ErrInvalidOutput)
	}
	info, err := os.Lstat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w %s, file may be in use: %v", ErrDestinationLocked, dst, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w %s: is a directory", ErrInvalidOutput, dst)
	}
	if err := w.remove(dst); err != nil {
		return fmt.Errorf("%w %s, file may be in use: %v", ErrDestinationLocked, dst, err)
	}
	return nil
}

func supported(k types.Kind) bool {
	switch k {
	case types.KindPDFToWord, types.KindPDFToExcel, types.KindPDFToImage, types.KindWordToPDF:
		return true
	}
	return false
}

func cancelled(err error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}

// stem returns the file name of path without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// tracker turns unit counts into percentages. It never reports a value lower
// than one it already reported.
type tracker struct {
	total int
	done  int
	last  int
	emit  func(int)
}

func newTracker(total int, emit func(int)) *tracker {
	return &tracker{total: total, emit: emit}
}

// step marks one more unit done and reports floor(done*100/total).
func (t *tracker) step() {
	if t.total <= 0 {
		return
	}
	t.done++
	pct := t.done * 100 / t.total
	if pct > 100 {
		pct = 100
	}
	if pct < t.last {
		pct = t.last
	}
	t.last = pct
	t.emit(pct)
}
