// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolchain locates and runs the external binaries that back some
// conversion capabilities (LibreOffice, poppler).
package toolchain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Tool describes an external binary and where to look for it.
type Tool struct {
	// Name is the display name ("soffice", "pdftoppm").
	Name string

	// Candidates are tried in order. Entries containing a path separator are
	// checked with Stat; bare names go through PATH lookup.
	Candidates []string
}

// Soffice is LibreOffice, used for PDF to Word.
var Soffice = Tool{
	Name: "soffice",
	Candidates: []string{
		"/opt/homebrew/bin/soffice",
		"/Applications/LibreOffice.app/Contents/MacOS/soffice",
		"/usr/bin/libreoffice",
		"/usr/bin/soffice",
		`C:\Program Files\LibreOffice\program\soffice.exe`,
		"soffice",
		"libreoffice",
	},
}

// Pdftoppm is poppler's page rasterizer, used for PDF to Image.
var Pdftoppm = Tool{
	Name: "pdftoppm",
	Candidates: []string{
		"/opt/homebrew/bin/pdftoppm",
		"/usr/bin/pdftoppm",
		"/usr/local/bin/pdftoppm",
		"pdftoppm",
	},
}

// WithOverride returns a copy of t that tries path first. An empty path
// returns t unchanged.
func (t Tool) WithOverride(path string) Tool {
	if path == "" {
		return t
	}
	c := make([]string, 0, len(t.Candidates)+1)
	c = append(c, path)
	c = append(c, t.Candidates...)
	return Tool{Name: t.Name, Candidates: c}
}

// executor abstracts process and file lookups for testing.
type executor interface {
	LookPath(file string) (string, error)
	Stat(path string) (os.FileInfo, error)
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (osExecutor) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }

func (osExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Runner resolves tools to binaries and runs them.
type Runner struct {
	exec executor
}

// NewRunner returns a Runner backed by os/exec.
func NewRunner() *Runner {
	return &Runner{exec: osExecutor{}}
}

// Locate returns the first candidate of t that exists.
func (r *Runner) Locate(t Tool) (string, error) {
	for _, c := range t.Candidates {
		if strings.ContainsAny(c, `/\`) {
			if info, err := r.exec.Stat(c); err == nil && !info.IsDir() {
				return c, nil
			}
			continue
		}
		if p, err := r.exec.LookPath(c); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s not found (tried %s)", t.Name, strings.Join(t.Candidates, ", "))
}

// Run locates t and executes it with args. Failures carry the tool's
// combined output.
func (r *Runner) Run(ctx context.Context, t Tool, args ...string) error {
	bin, err := r.Locate(t)
	if err != nil {
		return err
	}
	out, err := r.exec.Run(ctx, bin, args...)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s interrupted: %w", filepath.Base(bin), ctx.Err())
		}
		return fmt.Errorf("%s failed: %w, output: %s", t.Name, err, strings.TrimSpace(string(out)))
	}
	return nil
}
