// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docconv/internal/capability"
	"github.com/pdiddy/docconv/internal/history"
	"github.com/pdiddy/docconv/pkg/types"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("DOCCONV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(newTestViper())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 300, cfg.Convert.ImageDPI)
	assert.Equal(t, types.ImagePNG, cfg.Convert.ImageFormat)
	assert.Equal(t, types.DefaultFontPaths, cfg.Convert.FontPaths)
	assert.InDelta(t, 5.0, cfg.Convert.ParagraphGapMM, 1e-9)
	assert.Equal(t, 10, cfg.Recent.Max)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "history.db", filepath.Base(cfg.History.Path))
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docconv.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  format: json
convert:
  image_format: jpg
  font_paths:
    - /fonts/a.ttf
history:
  enabled: false
`), 0o644))
	t.Setenv("DOCCONV_CONVERT_IMAGE_DPI", "150")

	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 150, cfg.Convert.ImageDPI)
	assert.Equal(t, types.ImageJPEG, cfg.Convert.ImageFormat)
	assert.Equal(t, []string{"/fonts/a.ttf"}, cfg.Convert.FontPaths)
	assert.False(t, cfg.History.Enabled)
}

func TestLoadConfig_BadImageFormat(t *testing.T) {
	v := newTestViper()
	v.Set("convert.image_format", "gif")
	_, err := loadConfig(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gif")
}

func TestProgressLine(t *testing.T) {
	assert.Equal(t, "a.pdf [                    ] 0%", progressLine("a.pdf", 0))
	assert.Equal(t, "a.pdf [########            ] 42%", progressLine("a.pdf", 42))
	assert.Equal(t, "a.pdf [####################] 100%", progressLine("a.pdf", 100))
	assert.Equal(t, "a.pdf [####################] 100%", progressLine("a.pdf", 120))
}

func TestProgressPrinter(t *testing.T) {
	var status, out bytes.Buffer
	p := newProgressPrinter(&status, &out)
	job := types.ConversionJob{SourcePath: "/in/report.pdf"}

	p.Progress(job, 50)
	p.Progress(job, 100)
	p.Finished(job, types.Outcome{Success: true, Path: "/in/report.xlsx", Skipped: 2})
	p.Finished(types.ConversionJob{SourcePath: "/in/bad.pdf"}, types.Outcome{Reason: "document has no pages"})

	assert.Equal(t,
		"\rreport.pdf [##########          ] 50%\rreport.pdf [####################] 100%\n",
		status.String())
	assert.Equal(t,
		"converted: /in/report.xlsx (2 page(s) skipped)\nfailed: bad.pdf (document has no pages)\n",
		out.String())
}

func TestPrintCapabilities(t *testing.T) {
	var buf bytes.Buffer
	printCapabilities(&buf, capability.NewSet(capability.PdfTableTextExtractor, capability.SpreadsheetWriter))
	text := buf.String()

	assert.Contains(t, text, "PdfToWordConverter")
	assert.Contains(t, text, "missing")
	assert.Regexp(t, `pdf2excel\s+PDF to Excel\s+enabled\s+PdfTableTextExtractor, SpreadsheetWriter\n`, text)
	assert.Regexp(t, `pdf2word\s+PDF to Word\s+disabled\s+PdfTableTextExtractor, PdfToWordConverter\n`, text)
	assert.Regexp(t, `excel2pdf\s+Excel to PDF\s+disabled\s+no converter available\n`, text)
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil)
	assert.Equal(t, "No conversions recorded.\n", buf.String())

	buf.Reset()
	printHistory(&buf, []history.Record{
		{Kind: types.KindPDFToWord, Source: "/in/a.pdf", Output: "/in/a.docx", Success: true, FinishedAt: time.Now()},
		{Kind: types.KindWordToPDF, Source: "/in/b.docx", Reason: "no usable font found", FinishedAt: time.Now()},
	})
	assert.Contains(t, buf.String(), "/in/a.docx")
	assert.Contains(t, buf.String(), "no usable font found")
	assert.Contains(t, buf.String(), "2 conversion(s)")
}
