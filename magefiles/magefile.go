//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main contains Mage build targets for docconv developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "docconv"
	cmdPkg  = "./cmd/docconv"
	modPath = "github.com/pdiddy/docconv"
)

// Default target when mage runs without arguments.
var Default = Build

// sampleConfig is written by Init.
const sampleConfig = `# docconv configuration. Every key can also be set as DOCCONV_<SECTION>_<KEY>.
log:
  level: info
  format: text
convert:
  image_dpi: 300
  image_format: png
  paragraph_gap_mm: 5
  # soffice_path: /usr/bin/soffice
  # pdftoppm_path: /usr/bin/pdftoppm
  # font_paths:
  #   - /usr/share/fonts/truetype/wqy/wqy-microhei.ttf
recent:
  max: 10
history:
  enabled: true
`

// Init writes a sample docconv.yaml into the current directory unless one
// already exists.
func Init() error {
	const name = "docconv.yaml"
	if _, err := os.Stat(name); err == nil {
		fmt.Println(name, "already exists, leaving it alone.")
		return nil
	}
	if err := os.WriteFile(name, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	fmt.Println("Wrote", name)
	return nil
}

// Build compiles the CLI binary into bin/, stamping the version from git
// when available.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	out := filepath.Join(binDir, binName)
	ldflags := fmt.Sprintf("-X main.version=%s", version)
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Test runs the unit tests. CGO is required by the SQLite history store.
func Test() error {
	env := map[string]string{"CGO_ENABLED": "1"}
	return sh.RunWithV(env, "go", "test", "./...")
}

// Check vets the module and then runs the tests.
func Check() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	mg.Deps(Test)
	return nil
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Stats prints project metrics: Go production/test LOC per package and
// documentation word count.
func Stats() error {
	prod, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	tests, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", total(prod))
	fmt.Printf("Lines of code (Go, tests):      %d\n", total(tests))
	fmt.Printf("Words (documentation):          %d\n", docWords)
	fmt.Println()
	for _, pkg := range sortedKeys(prod) {
		name := modPath
		if pkg != "." {
			name += "/" + pkg
		}
		fmt.Printf("  %-48s %6d %6d\n", name, prod[pkg], tests[pkg])
	}
	return nil
}

// countGoLines counts non-blank lines in Go files per directory. If
// testOnly is true, only _test.go files count; otherwise only non-test
// files. Hidden and underscore-prefixed directories are skipped.
func countGoLines(root string, testOnly bool) (map[string]int, error) {
	counts := map[string]int{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if skipDir(path, info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		dir := filepath.ToSlash(filepath.Dir(path))
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				counts[dir]++
			}
		}
		return nil
	})
	return counts, err
}

// countDocWords counts words in top-level and docs/ Markdown and YAML files.
func countDocWords(root string) (int, error) {
	words := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if skipDir(path, info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		switch filepath.Ext(path) {
		case ".md", ".yaml", ".yml":
		default:
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		words += len(strings.Fields(string(data)))
		return nil
	})
	return words, err
}

func skipDir(path, name string) bool {
	if path == "." {
		return false
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == binDir
}

func total(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
