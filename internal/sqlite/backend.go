// Package sqlite implements the SQLite storage backend for roster. The whole
// snapshot lives in one database file under the data directory; every save
// replaces all rows in a single transaction.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	msqlite "modernc.org/sqlite" // pure go sqlite driver
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/roster/internal/sqlstore"
	"github.com/mesh-intelligence/roster/pkg/types"
)

// DBFileName is the database file created in the data directory.
const DBFileName = "roster.db"

// Backend is a types.Storage over a SQLite database file. The connection is
// opened on first use and reopened after Purge.
type Backend struct {
	mu      sync.Mutex
	path    string
	db      *sql.DB
	corrupt bool // last Load found a file SQLite cannot read
}

var _ types.Storage = (*Backend)(nil)

// NewBackend returns a backend for the database at path. Nothing is opened
// or created until the first Save.
func NewBackend(path string) *Backend {
	return &Backend{path: path}
}

// Location implements types.Storage.
func (b *Backend) Location() string { return b.path }

func (b *Backend) conn() (*sql.DB, error) {
	if b.db != nil {
		return b.db, nil
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", b.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers on the one file.
	db.SetMaxOpenConns(1)
	b.db = db
	return db, nil
}

func (b *Backend) exists() (bool, error) {
	_, err := os.Stat(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Load implements types.Storage. A missing database file is reported as
// types.ErrStorageAbsent without creating it; a file that is not a readable
// SQLite database wraps types.ErrCorruptData and is replaced by the next Save.
func (b *Backend) Load(ctx context.Context) (types.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ok, err := b.exists()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", b.path, err)
	}
	if !ok && b.db == nil {
		return nil, fmt.Errorf("%s: %w", b.path, types.ErrStorageAbsent)
	}
	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	snap, err := sqlstore.Load(ctx, db, sqlstore.SQLite)
	if isCorrupt(err) {
		b.corrupt = true
		return nil, fmt.Errorf("%s: %w: %w", b.path, types.ErrCorruptData, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.path, err)
	}
	b.corrupt = false
	return snap, nil
}

// isCorrupt reports SQLite result codes for a damaged or foreign file.
func isCorrupt(err error) bool {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CORRUPT:
		return true
	}
	return false
}

// Save implements types.Storage. A file found corrupt by Load is removed
// first so the snapshot is written to a fresh database.
func (b *Backend) Save(ctx context.Context, snap types.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.corrupt {
		if err := b.removeLocked(); err != nil {
			return err
		}
		b.corrupt = false
	}
	db, err := b.conn()
	if err != nil {
		return err
	}
	return sqlstore.Save(ctx, db, sqlstore.SQLite, snap)
}

// Purge closes the connection and deletes the database file.
func (b *Backend) Purge(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.corrupt = false
	ok, err := b.exists()
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", b.path, err)
	}
	if err := b.removeLocked(); err != nil {
		return false, err
	}
	return ok, nil
}

// removeLocked closes the connection and deletes the database file with its
// journal companions.
func (b *Backend) removeLocked() error {
	if err := b.closeLocked(); err != nil {
		return err
	}
	for _, p := range []string{b.path, b.path + "-wal", b.path + "-shm", b.path + "-journal"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

// StoreID returns the identifier stamped into the database on its first save.
func (b *Backend) StoreID(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ok, err := b.exists(); err != nil || !ok {
		return "", types.ErrStorageAbsent
	}
	db, err := b.conn()
	if err != nil {
		return "", err
	}
	return sqlstore.StoreID(ctx, db, sqlstore.SQLite)
}

// Close releases the connection. Idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeLocked()
}

func (b *Backend) closeLocked() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
