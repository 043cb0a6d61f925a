// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package capability resolves, once per process, which conversion primitives
// are available. The result is an immutable Set handed to the dispatcher and
// worker.
package capability

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/docconv/internal/toolchain"
	"github.com/pdiddy/docconv/pkg/types"
)

// Capability names an external conversion primitive.
type Capability string

const (
	PdfToWordConverter    Capability = "PdfToWordConverter"
	PdfTableTextExtractor Capability = "PdfTableTextExtractor"
	SpreadsheetWriter     Capability = "SpreadsheetWriter"
	ImageCodec            Capability = "ImageCodec"
	PdfRasterizer         Capability = "PdfRasterizer"
	DocumentReader        Capability = "DocumentReader"
	PdfWriter             Capability = "PdfWriter"
)

// All lists every capability in report order.
var All = []Capability{
	PdfToWordConverter,
	PdfTableTextExtractor,
	SpreadsheetWriter,
	ImageCodec,
	PdfRasterizer,
	DocumentReader,
	PdfWriter,
}

// hints are the suggested installation sources shown in the advisory.
var hints = map[Capability]string{
	PdfToWordConverter:    "LibreOffice, https://www.libreoffice.org/download/",
	PdfRasterizer:         "poppler-utils (apt install poppler-utils, brew install poppler)",
	PdfTableTextExtractor: "built in",
	SpreadsheetWriter:     "built in",
	ImageCodec:            "built in",
	DocumentReader:        "built in",
	PdfWriter:             "built in",
}

// requirements maps each supported kind to the capabilities it needs.
var requirements = map[types.Kind][]Capability{
	types.KindPDFToWord:  {PdfTableTextExtractor, PdfToWordConverter},
	types.KindPDFToExcel: {PdfTableTextExtractor, SpreadsheetWriter},
	types.KindPDFToImage: {PdfTableTextExtractor, PdfRasterizer, ImageCodec},
	types.KindWordToPDF:  {DocumentReader, PdfWriter},
}

// Requirements returns the capabilities needed by kind. Unsupported kinds
// need nothing and return nil.
func Requirements(kind types.Kind) []Capability {
	return append([]Capability(nil), requirements[kind]...)
}

// Hint returns the installation source for c.
func Hint(c Capability) string {
	return hints[c]
}

// ErrMissing matches any *MissingError with errors.Is.
var ErrMissing = errors.New("missing dependency")

// MissingError reports an unavailable capability.
type MissingError struct {
	Capability Capability
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s: %s (install %s)", ErrMissing, e.Capability, Hint(e.Capability))
}

func (e *MissingError) Is(target error) bool {
	return target == ErrMissing
}

// Set is the resolved availability of every capability. The zero value has
// nothing available.
type Set struct {
	available map[Capability]bool
	binaries  map[Capability]string
}

// NewSet builds a Set with exactly the given capabilities available.
func NewSet(caps ...Capability) Set {
	s := Set{available: make(map[Capability]bool, len(caps))}
	for _, c := range caps {
		s.available[c] = true
	}
	return s
}

// Full returns a Set with every capability available.
func Full() Set {
	return NewSet(All...)
}

// Has reports whether c is available.
func (s Set) Has(c Capability) bool {
	return s.available[c]
}

// Binary returns the resolved executable for an external capability.
func (s Set) Binary(c Capability) string {
	return s.binaries[c]
}

// Missing returns the unavailable capabilities in report order.
func (s Set) Missing() []Capability {
	var out []Capability
	for _, c := range All {
		if !s.available[c] {
			out = append(out, c)
		}
	}
	return out
}

// Require returns a *MissingError for the first capability kind needs that
// is unavailable.
func (s Set) Require(kind types.Kind) error {
	for _, c := range requirements[kind] {
		if !s.available[c] {
			return &MissingError{Capability: c}
		}
	}
	return nil
}

// Supports reports whether every capability kind needs is available.
// Unsupported kinds are never supported.
func (s Set) Supports(kind types.Kind) bool {
	if _, ok := requirements[kind]; !ok {
		return false
	}
	return s.Require(kind) == nil
}

// Advisory describes missing capabilities for the user, or returns "" when
// nothing is missing.
func (s Set) Advisory() string {
	missing := s.Missing()
	if len(missing) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Some conversions are disabled because dependencies are missing:\n")
	for _, c := range missing {
		fmt.Fprintf(&b, "  %-22s install %s\n", c, Hint(c))
	}

	var disabled []string
	for kind := range requirements {
		if !s.Supports(kind) {
			disabled = append(disabled, string(kind))
		}
	}
	sort.Strings(disabled)
	fmt.Fprintf(&b, "Disabled: %s\n", strings.Join(disabled, ", "))
	return b.String()
}

// Locator resolves external tools to binaries.
type Locator interface {
	Locate(t toolchain.Tool) (string, error)
}

// Detect resolves the capability set. Linked-in capabilities are always
// available; external ones are probed through loc.
func Detect(cfg types.ConvertConfig, loc Locator) Set {
	s := Set{
		available: map[Capability]bool{
			PdfTableTextExtractor: true,
			SpreadsheetWriter:     true,
			ImageCodec:            true,
			DocumentReader:        true,
			PdfWriter:             true,
		},
		binaries: map[Capability]string{},
	}

	external := map[Capability]toolchain.Tool{
		PdfToWordConverter: toolchain.Soffice.WithOverride(cfg.SofficePath),
		PdfRasterizer:      toolchain.Pdftoppm.WithOverride(cfg.PdftoppmPath),
	}
	for c, tool := range external {
		if bin, err := loc.Locate(tool); err == nil {
			s.available[c] = true
			s.binaries[c] = bin
		}
	}
	return s
}
