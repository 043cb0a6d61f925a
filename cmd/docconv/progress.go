// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docconv/pkg/types"
)

const barWidth = 20

// progressPrinter renders job events as a redrawn bar on status and one
// result line per job on out.
type progressPrinter struct {
	status io.Writer
	out    io.Writer
	drawn  bool
}

func newProgressPrinter(status, out io.Writer) *progressPrinter {
	return &progressPrinter{status: status, out: out}
}

func (p *progressPrinter) Progress(job types.ConversionJob, percent int) {
	fmt.Fprintf(p.status, "\r%s", progressLine(filepath.Base(job.SourcePath), percent))
	p.drawn = true
}

func (p *progressPrinter) Finished(job types.ConversionJob, o types.Outcome) {
	if p.drawn {
		fmt.Fprintln(p.status)
		p.drawn = false
	}
	if !o.Success {
		fmt.Fprintf(p.out, "failed: %s (%s)\n", filepath.Base(job.SourcePath), o.Reason)
		return
	}
	if o.Skipped > 0 {
		fmt.Fprintf(p.out, "converted: %s (%d page(s) skipped)\n", o.Path, o.Skipped)
		return
	}
	fmt.Fprintf(p.out, "converted: %s\n", o.Path)
}

// progressLine formats "name [####      ] 42%".
func progressLine(name string, percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * barWidth / 100
	return fmt.Sprintf("%s [%s%s] %d%%", name,
		strings.Repeat("#", filled), strings.Repeat(" ", barWidth-filled), percent)
}
