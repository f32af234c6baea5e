package timelog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot persists the full entry log as a single serialized blob.
// It is rewritten after every mutation; there is no incremental write log.
type Snapshot interface {
	// Load restores the last persisted entry collection. A missing
	// snapshot yields an empty slice and no error; a corrupt one
	// returns an error that callers treat as an empty store.
	Load() ([]Entry, error)

	// Save overwrites the snapshot with the given collection.
	Save(entries []Entry) error

	// Close releases any resources held by the snapshot backend.
	Close() error
}

// FileSnapshot stores the log as a JSON file, written atomically via a
// temp file and rename.
type FileSnapshot struct {
	path string
}

// NewFileSnapshot creates a file-backed snapshot at path. Parent
// directories are created on first save.
func NewFileSnapshot(path string) *FileSnapshot {
	return &FileSnapshot{path: path}
}

// Path returns the snapshot file path.
func (f *FileSnapshot) Path() string { return f.path }

// Load reads and decodes the snapshot file. A corrupt file is renamed
// aside with a .corrupt suffix so the next save starts clean.
func (f *FileSnapshot) Load() ([]Entry, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", f.path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		backup := f.path + ".corrupt"
		_ = os.Rename(f.path, backup)
		return nil, fmt.Errorf("corrupt snapshot %s (backed up to %s): %w", f.path, backup, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Save writes the collection as indented JSON, atomically.
func (f *FileSnapshot) Save(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename snapshot temp file: %w", err)
	}
	return nil
}

// Close is a no-op for file snapshots.
func (f *FileSnapshot) Close() error { return nil }
