// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docconv/internal/capability"
	"github.com/pdiddy/docconv/internal/convert"
	"github.com/pdiddy/docconv/pkg/types"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeWorker emits 50 then 100 for each job, or 50 then a failure for
// sources listed in fail. Starts are logged to the shared event list.
type fakeWorker struct {
	events *[]string
	fail   map[string]bool
}

func (f *fakeWorker) Start(_ context.Context, job types.ConversionJob) convert.Run {
	name := filepath.Base(job.SourcePath)
	*f.events = append(*f.events, "start "+name)

	progress := make(chan int)
	outcome := make(chan types.Outcome, 1)
	failed := f.fail[name]
	go func() {
		defer close(outcome)
		progress <- 50
		o := types.Outcome{JobID: job.ID, Kind: job.Kind}
		if failed {
			o.Reason = "boom"
		} else {
			progress <- 100
			o.Success = true
			o.Path = job.DestinationPath
		}
		close(progress)
		outcome <- o
	}()
	return convert.Run{Progress: progress, Outcome: outcome}
}

// eventObserver logs events in arrival order and can run a hook on finish.
type eventObserver struct {
	events     *[]string
	onFinished func(types.ConversionJob)
}

func (o *eventObserver) Progress(job types.ConversionJob, p int) {
	*o.events = append(*o.events, fmt.Sprintf("progress %s %d", filepath.Base(job.SourcePath), p))
}

func (o *eventObserver) Finished(job types.ConversionJob, out types.Outcome) {
	*o.events = append(*o.events, fmt.Sprintf("finished %s %t", filepath.Base(job.SourcePath), out.Success))
	if o.onFinished != nil {
		o.onFinished(job)
	}
}

type fakeRecorder struct {
	ids []string
	err error
}

func (r *fakeRecorder) Record(_ context.Context, job types.ConversionJob, _ types.Outcome) error {
	r.ids = append(r.ids, job.ID)
	return r.err
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("placeholder"), 0o644))
	return p
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("job-%d", n)
	}
}

func newTestDispatcher(w Starter, caps capability.Set, opts ...Option) *Dispatcher {
	d := New(w, caps, append([]Option{WithLogger(discard)}, opts...)...)
	d.newID = sequentialIDs()
	return d
}

func TestDeriveDestination(t *testing.T) {
	tests := []struct {
		kind types.Kind
		src  string
		want string
	}{
		{types.KindPDFToWord, "/d/report.pdf", "/d/report.docx"},
		{types.KindPDFToExcel, "/d/report.PDF", "/d/report.xlsx"},
		{types.KindPDFToImage, "/d/scan.pdf", "/d/scan.png"},
		{types.KindWordToPDF, "/d/memo.final.docx", "/d/memo.final.pdf"},
		{types.KindExcelToPDF, "/d/sheet.xls", "/d/sheet.pdf"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveDestination(tt.kind, tt.src))
		})
	}
}

func TestEnqueue(t *testing.T) {
	dir := t.TempDir()
	pdf := touch(t, dir, "report.pdf")
	upper := touch(t, dir, "SCAN.PDF")
	xlsx := touch(t, dir, "sheet.xlsx")
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	tests := []struct {
		name     string
		kind     types.Kind
		src      string
		dest     string
		wantDest string
		wantErr  error
		errText  string
	}{
		{name: "derived destination", kind: types.KindPDFToExcel, src: pdf, wantDest: filepath.Join(dir, "report.xlsx")},
		{name: "explicit destination", kind: types.KindPDFToWord, src: pdf, dest: filepath.Join(dir, "x.docx"), wantDest: filepath.Join(dir, "x.docx")},
		{name: "extension case ignored", kind: types.KindPDFToImage, src: upper, wantDest: filepath.Join(dir, "SCAN.png")},
		{name: "excel accepted at selection", kind: types.KindExcelToPDF, src: xlsx, wantDest: filepath.Join(dir, "sheet.pdf")},
		{name: "wrong extension", kind: types.KindWordToPDF, src: pdf, wantErr: ErrWrongExtension, errText: "report.pdf"},
		{name: "unknown kind", kind: types.Kind("pdf2mp3"), src: pdf, wantErr: convert.ErrUnsupportedKind},
		{name: "missing source", kind: types.KindPDFToWord, src: filepath.Join(dir, "nope.pdf"), errText: "cannot read source"},
		{name: "destination is a directory", kind: types.KindPDFToWord, src: pdf, dest: outDir, wantErr: convert.ErrInvalidOutput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDispatcher(&fakeWorker{}, capability.Full())
			job, err := d.Enqueue(tt.kind, tt.src, tt.dest)
			if tt.wantErr != nil || tt.errText != "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				assert.Contains(t, err.Error(), tt.errText)
				assert.Zero(t, d.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "job-1", job.ID)
			assert.Equal(t, tt.kind, job.Kind)
			assert.Equal(t, tt.wantDest, job.DestinationPath)
			assert.True(t, filepath.IsAbs(job.SourcePath))
			assert.Equal(t, 1, d.Len())
		})
	}
}

func TestEnqueue_AssignsUUID(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, dir, "a.pdf")
	d := New(&fakeWorker{}, capability.Full(), WithLogger(discard))

	a, err := d.Enqueue(types.KindPDFToExcel, src, "")
	require.NoError(t, err)
	b, err := d.Enqueue(types.KindPDFToExcel, src, "")
	require.NoError(t, err)
	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestDrain_SequentialFIFO(t *testing.T) {
	dir := t.TempDir()
	var events []string
	rec := &fakeRecorder{}
	d := newTestDispatcher(
		&fakeWorker{events: &events, fail: map[string]bool{"b.pdf": true}},
		capability.Full(),
		WithObserver(&eventObserver{events: &events}),
		WithHistory(rec),
	)
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		_, err := d.Enqueue(types.KindPDFToExcel, touch(t, dir, name), "")
		require.NoError(t, err)
	}

	res := d.Drain(context.Background())

	assert.Equal(t, []string{
		"start a.pdf", "progress a.pdf 50", "progress a.pdf 100", "finished a.pdf true",
		"start b.pdf", "progress b.pdf 50", "finished b.pdf false",
		"start c.pdf", "progress c.pdf 50", "progress c.pdf 100", "finished c.pdf true",
	}, events)
	assert.Equal(t, []string{"job-1", "job-2", "job-3"}, rec.ids)

	require.Len(t, res.Converted, 2)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "boom", res.Failed[0].Reason)
	assert.Empty(t, res.Pending)
	assert.Equal(t, 3, res.Total())
	assert.True(t, res.HasFailures())
	assert.Zero(t, d.Len())
}

func TestDrain_CancelLeavesPending(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events []string
	obs := &eventObserver{events: &events, onFinished: func(types.ConversionJob) { cancel() }}
	d := newTestDispatcher(&fakeWorker{events: &events}, capability.Full(), WithObserver(obs))
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		_, err := d.Enqueue(types.KindPDFToImage, touch(t, dir, name), "")
		require.NoError(t, err)
	}

	res := d.Drain(ctx)

	assert.Len(t, res.Converted, 1)
	require.Len(t, res.Pending, 2)
	assert.Equal(t, "job-2", res.Pending[0].ID)
	assert.True(t, res.HasFailures())
	assert.Equal(t, 2, d.Len())

	res = d.Drain(context.Background())
	assert.Len(t, res.Converted, 2)
	assert.False(t, res.HasFailures())
}

func TestDrain_HistoryErrorDoesNotStopBatch(t *testing.T) {
	dir := t.TempDir()
	var events []string
	rec := &fakeRecorder{err: errors.New("disk full")}
	d := newTestDispatcher(&fakeWorker{events: &events}, capability.Full(), WithHistory(rec))
	for _, name := range []string{"a.pdf", "b.pdf"} {
		_, err := d.Enqueue(types.KindPDFToWord, touch(t, dir, name), "")
		require.NoError(t, err)
	}

	res := d.Drain(context.Background())
	assert.Len(t, res.Converted, 2)
	assert.Len(t, rec.ids, 2)
}

func TestDrain_RealWorkerDegraded(t *testing.T) {
	dir := t.TempDir()
	caps := capability.NewSet(capability.PdfTableTextExtractor)
	w := convert.NewWorker(caps, types.ConvertConfig{}, nil, convert.WithLogger(discard))
	d := newTestDispatcher(w, caps)

	_, err := d.Enqueue(types.KindPDFToExcel, touch(t, dir, "a.pdf"), "")
	require.NoError(t, err)
	_, err = d.Enqueue(types.KindExcelToPDF, touch(t, dir, "b.xlsx"), "")
	require.NoError(t, err)

	res := d.Drain(context.Background())
	require.Len(t, res.Failed, 2)
	assert.Contains(t, res.Failed[0].Reason, "missing dependency")
	assert.Contains(t, res.Failed[1].Reason, "unsupported conversion type")
	assert.NoFileExists(t, filepath.Join(dir, "a.xlsx"))
}

func TestAdvisory(t *testing.T) {
	t.Run("full set", func(t *testing.T) {
		d := newTestDispatcher(&fakeWorker{}, capability.Full())
		assert.False(t, d.Degraded())
		assert.Empty(t, d.Advisory())
		assert.True(t, d.Supports(types.KindPDFToWord))
	})

	t.Run("degraded reports once", func(t *testing.T) {
		caps := capability.NewSet(capability.PdfTableTextExtractor, capability.SpreadsheetWriter)
		d := newTestDispatcher(&fakeWorker{}, caps)
		assert.True(t, d.Degraded())
		assert.True(t, d.Supports(types.KindPDFToExcel))
		assert.False(t, d.Supports(types.KindPDFToWord))

		first := d.Advisory()
		assert.Contains(t, first, string(capability.PdfToWordConverter))
		assert.Contains(t, first, "pdf2word")
		assert.Empty(t, d.Advisory())
	})
}

func TestCheck(t *testing.T) {
	caps := capability.NewSet(capability.PdfTableTextExtractor, capability.SpreadsheetWriter)
	d := newTestDispatcher(&fakeWorker{}, caps)

	assert.NoError(t, d.Check(types.KindPDFToExcel))
	assert.NoError(t, d.Check(types.KindExcelToPDF), "unsupported kinds fail per job")

	err := d.Check(types.KindPDFToImage)
	require.Error(t, err)
	assert.ErrorIs(t, err, capability.ErrMissing)
	assert.Contains(t, err.Error(), "pdf2image is disabled")
	assert.Contains(t, err.Error(), string(capability.PdfRasterizer))
	assert.Zero(t, d.Len())
}
