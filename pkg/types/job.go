// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies a conversion direction. It is fixed for a job's lifetime.
type Kind string

const (
	KindPDFToWord  Kind = "pdf2word"
	KindPDFToExcel Kind = "pdf2excel"
	KindPDFToImage Kind = "pdf2image"
	KindWordToPDF  Kind = "word2pdf"
	KindExcelToPDF Kind = "excel2pdf"
)

// Kinds lists every known conversion kind in display order.
var Kinds = []Kind{KindPDFToWord, KindPDFToExcel, KindPDFToImage, KindWordToPDF, KindExcelToPDF}

// ParseKind resolves a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unsupported conversion type: %q", s)
}

// SourceExtensions returns the input extensions accepted at selection time.
func (k Kind) SourceExtensions() []string {
	switch k {
	case KindPDFToWord, KindPDFToExcel, KindPDFToImage:
		return []string{".pdf"}
	case KindWordToPDF:
		return []string{".docx", ".doc"}
	case KindExcelToPDF:
		return []string{".xlsx", ".xls"}
	}
	return nil
}

// TargetExtension returns the extension used when an output path is derived
// from the input path.
func (k Kind) TargetExtension() string {
	switch k {
	case KindPDFToWord:
		return ".docx"
	case KindPDFToExcel:
		return ".xlsx"
	case KindPDFToImage:
		return ".png"
	case KindWordToPDF, KindExcelToPDF:
		return ".pdf"
	}
	return ""
}

// Title is the human-readable label for the kind.
func (k Kind) Title() string {
	switch k {
	case KindPDFToWord:
		return "PDF to Word"
	case KindPDFToExcel:
		return "PDF to Excel"
	case KindPDFToImage:
		return "PDF to Image"
	case KindWordToPDF:
		return "Word to PDF"
	case KindExcelToPDF:
		return "Excel to PDF"
	}
	return string(k)
}

// ConversionJob is one source to destination conversion request.
// The dispatcher creates it right before starting; the worker borrows it for
// a single run.
type ConversionJob struct {
	// ID is a uuid assigned when the job is enqueued.
	ID string `json:"id" yaml:"id"`

	// Kind is the conversion direction.
	Kind Kind `json:"kind" yaml:"kind"`

	// SourcePath is the absolute path of the input document.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// DestinationPath is the absolute output path. Multi-page image export
	// writes into a sibling directory named after its stem instead.
	DestinationPath string `json:"destination_path" yaml:"destination_path"`
}

// Outcome is the single terminal event of a job.
type Outcome struct {
	JobID string `json:"job_id" yaml:"job_id"`
	Kind  Kind   `json:"kind" yaml:"kind"`

	// Success reports whether the conversion completed.
	Success bool `json:"success" yaml:"success"`

	// Path is the file or directory actually written. Empty on failure.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Reason is the human-readable failure message. Empty on success.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Skipped counts units dropped after a per-unit extraction error.
	Skipped int `json:"skipped" yaml:"skipped"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

// Duration returns how long the job ran.
func (o Outcome) Duration() time.Duration {
	return o.FinishedAt.Sub(o.StartedAt)
}
