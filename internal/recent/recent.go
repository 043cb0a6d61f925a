// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recent keeps the short list of recently selected documents. The
// list is a single JSON array rewritten whole on every save. It is meant for
// one process on one goroutine; there is no locking.
package recent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DefaultMax is the number of entries kept when no limit is configured.
const DefaultMax = 10

// Entry is one recently selected file.
type Entry struct {
	Path        string    `json:"path"`
	DisplayName string    `json:"display_name"`
	Timestamp   time.Time `json:"timestamp"`
}

// List is the in-memory recent files list, most recent first.
type List struct {
	path    string
	max     int
	entries []Entry
	now     func() time.Time
}

// DefaultPath returns the per-user location under the temp directory.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), "docconv", "recent_files.json")
}

// Load reads the list at path. A missing file yields an empty list. A
// corrupt file is logged and also yields an empty list, which the next Save
// overwrites.
func Load(path string, max int) (*List, error) {
	if max <= 0 {
		max = DefaultMax
	}
	l := &List{path: path, max: max, now: time.Now}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("reading recent files %s: %w", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("ignoring corrupt recent files list", "path", path, "error", err)
		return l, nil
	}
	if len(entries) > max {
		entries = entries[:max]
	}
	l.entries = entries
	return l, nil
}

// Entries returns a copy of the list, most recent first.
func (l *List) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Add moves path to the front, dropping any older entry for the same path
// and anything beyond the limit.
func (l *List) Add(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	e := Entry{
		Path:        path,
		DisplayName: filepath.Base(path),
		Timestamp:   l.now().UTC(),
	}

	out := make([]Entry, 0, len(l.entries)+1)
	out = append(out, e)
	for _, old := range l.entries {
		if old.Path == path {
			continue
		}
		out = append(out, old)
	}
	if len(out) > l.max {
		out = out[:l.max]
	}
	l.entries = out
}

// Clear empties the list.
func (l *List) Clear() {
	l.entries = nil
}

// Save writes the whole list, replacing the previous file.
func (l *List) Save() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating recent files directory: %w", err)
	}

	entries := l.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling recent files: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing recent files: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing recent files: %w", err)
	}
	return nil
}
