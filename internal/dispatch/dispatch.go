// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dispatch queues conversion jobs and runs them one at a time on a
// worker, forwarding progress and outcomes to an observer.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/docconv/internal/capability"
	"github.com/pdiddy/docconv/internal/convert"
	"github.com/pdiddy/docconv/pkg/types"
)

// ErrWrongExtension is returned by Enqueue when the source file does not
// carry an extension the kind accepts.
var ErrWrongExtension = errors.New("unsupported file type")

// Starter launches a job in the background. *convert.Worker implements it.
type Starter interface {
	Start(ctx context.Context, job types.ConversionJob) convert.Run
}

// Observer receives job events on the goroutine that called Drain.
type Observer interface {
	Progress(job types.ConversionJob, percent int)
	Finished(job types.ConversionJob, outcome types.Outcome)
}

// Recorder persists terminal outcomes. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, job types.ConversionJob, outcome types.Outcome) error
}

type nopObserver struct{}

func (nopObserver) Progress(types.ConversionJob, int) {}
func (nopObserver) Finished(types.ConversionJob, types.Outcome) {}

// BatchResult summarizes one Drain.
type BatchResult struct {
	Converted []types.Outcome
	Failed    []types.Outcome

	// Pending holds jobs left in the queue because the context ended.
	Pending []types.ConversionJob
}

// Total returns the number of jobs that reached an outcome.
func (r BatchResult) Total() int {
	return len(r.Converted) + len(r.Failed)
}

// HasFailures reports whether any job failed or was left pending.
func (r BatchResult) HasFailures() bool {
	return len(r.Failed) > 0 || len(r.Pending) > 0
}

// Dispatcher owns the FIFO job queue. It is not safe for concurrent use;
// one goroutine enqueues and drains.
type Dispatcher struct {
	worker   Starter
	caps     capability.Set
	observer Observer
	history  Recorder
	log      *slog.Logger
	newID    func() string

	queue   []types.ConversionJob
	advised bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithObserver sets the receiver of progress and outcome events.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

// WithHistory records every outcome in r.
func WithHistory(r Recorder) Option {
	return func(d *Dispatcher) { d.history = r }
}

// WithLogger sets the dispatcher's logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// New creates a dispatcher that runs jobs on worker.
func New(worker Starter, caps capability.Set, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		worker:   worker,
		caps:     caps,
		observer: nopObserver{},
		log:      slog.Default(),
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// DeriveDestination replaces the extension of src with the kind's target
// extension.
func DeriveDestination(kind types.Kind, src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + kind.TargetExtension()
}

// Enqueue validates a selection and appends a job for it. An empty dest is
// derived from src.
func (d *Dispatcher) Enqueue(kind types.Kind, src, dest string) (types.ConversionJob, error) {
	exts := kind.SourceExtensions()
	if len(exts) == 0 {
		return types.ConversionJob{}, fmt.Errorf("%w: %s", convert.ErrUnsupportedKind, kind)
	}
	if !hasExtension(src, exts) {
		return types.ConversionJob{}, fmt.Errorf("%w: %s (%s expects %s)",
			ErrWrongExtension, filepath.Base(src), kind.Title(), strings.Join(exts, ", "))
	}

	abs, err := filepath.Abs(src)
	if err != nil {
		return types.ConversionJob{}, fmt.Errorf("resolving %s: %w", src, err)
	}
	src = abs
	info, err := os.Stat(src)
	if err != nil {
		return types.ConversionJob{}, fmt.Errorf("cannot read source %s: %w", src, err)
	}
	if info.IsDir() {
		return types.ConversionJob{}, fmt.Errorf("cannot read source %s: is a directory", src)
	}

	if dest == "" {
		dest = DeriveDestination(kind, src)
	}
	if abs, err = filepath.Abs(dest); err != nil {
		return types.ConversionJob{}, fmt.Errorf("resolving %s: %w", dest, err)
	}
	dest = abs
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return types.ConversionJob{}, fmt.Errorf("%w %s: is a directory", convert.ErrInvalidOutput, dest)
	}

	job := types.ConversionJob{
		ID:              d.newID(),
		Kind:            kind,
		SourcePath:      src,
		DestinationPath: dest,
	}
	d.queue = append(d.queue, job)
	d.log.Debug("job enqueued", "job", job.ID, "kind", kind, "source", src, "destination", dest)
	return job, nil
}

// Len returns the number of queued jobs.
func (d *Dispatcher) Len() int {
	return len(d.queue)
}

// Drain runs queued jobs in order until the queue is empty or ctx ends.
// Each job's outcome is observed and recorded before the next one starts.
func (d *Dispatcher) Drain(ctx context.Context) BatchResult {
	var res BatchResult
	for len(d.queue) > 0 && ctx.Err() == nil {
		job := d.queue[0]
		d.queue = d.queue[1:]

		run := d.worker.Start(ctx, job)
		o := run.Wait(func(p int) { d.observer.Progress(job, p) })
		d.observer.Finished(job, o)
		d.record(ctx, job, o)

		if o.Success {
			res.Converted = append(res.Converted, o)
		} else {
			res.Failed = append(res.Failed, o)
		}
	}
	res.Pending = append(res.Pending, d.queue...)
	if len(res.Pending) > 0 {
		d.log.Info("batch interrupted", "pending", len(res.Pending))
	}
	return res
}

func (d *Dispatcher) record(ctx context.Context, job types.ConversionJob, o types.Outcome) {
	if d.history == nil {
		return
	}
	if err := d.history.Record(context.WithoutCancel(ctx), job, o); err != nil {
		d.log.Warn("recording history failed", "job", job.ID, "error", err)
	}
}

// Degraded reports whether any capability is missing.
func (d *Dispatcher) Degraded() bool {
	return len(d.caps.Missing()) > 0
}

// Supports reports whether kind can run with the detected capabilities.
func (d *Dispatcher) Supports(kind types.Kind) bool {
	return d.caps.Supports(kind)
}

// Check returns the missing capability that disables kind, or nil. A kind
// with no converter passes, so its jobs still reach an outcome.
func (d *Dispatcher) Check(kind types.Kind) error {
	if err := d.caps.Require(kind); err != nil {
		return fmt.Errorf("%s is disabled: %w", kind, err)
	}
	return nil
}

// Advisory returns the missing-dependency notice the first time it is
// called in degraded mode, and "" afterwards.
func (d *Dispatcher) Advisory() string {
	if d.advised || !d.Degraded() {
		return ""
	}
	d.advised = true
	return d.caps.Advisory()
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
