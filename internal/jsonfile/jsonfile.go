// Package jsonfile stores the roster snapshot as a single indented JSON file.
// Every save rewrites the whole file using the temp-file, fsync, rename
// pattern, so readers never observe a partial write.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/roster/pkg/types"
)

// Storage is a types.Storage backed by one JSON file.
type Storage struct {
	path string
}

var _ types.Storage = (*Storage)(nil)

// New returns a Storage for the file at path. The file need not exist.
func New(path string) *Storage {
	return &Storage{path: path}
}

// Location implements types.Storage.
func (s *Storage) Location() string { return s.path }

// Load reads and decodes the file. A missing file wraps
// types.ErrStorageAbsent; an undecodable one wraps types.ErrCorruptData.
func (s *Storage) Load(ctx context.Context) (types.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.path, types.ErrStorageAbsent)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return Decode(data)
}

// Decode parses a snapshot document. Errors wrap types.ErrCorruptData.
func Decode(data []byte) (types.Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", types.ErrCorruptData)
	}
	var snap types.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrCorruptData, err)
	}
	return snap, nil
}

// Encode renders a snapshot as indented JSON with a trailing newline.
func Encode(snap types.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Save encodes snap and atomically replaces the file.
func (s *Storage) Save(ctx context.Context, snap types.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	return writeAtomic(s.path, data)
}

// Purge removes the file. It reports false if the file did not exist.
func (s *Storage) Purge(ctx context.Context) (bool, error) {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("removing %s: %w", s.path, err)
	}
	return true, nil
}

// Close implements types.Storage; a file backend holds no resources.
func (s *Storage) Close() error { return nil }

// writeAtomic writes data to a temp file in the target directory, syncs it,
// and renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".roster-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
