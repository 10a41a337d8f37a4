// Package postgres provides a Postgres-backed roster storage. The snapshot
// is written to two tables through the pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/mesh-intelligence/roster/internal/sqlstore"
	"github.com/mesh-intelligence/roster/pkg/types"
)

const defaultDriver = "pgx"

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store is a types.Storage over a Postgres database.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

var _ types.Storage = (*Store)(nil)

// NewStore opens and pings the database at dsn.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, types.ErrDSNMissing
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Location implements types.Storage. Credentials are not included.
func (s *Store) Location() string { return "postgres:roster_records" }

// Load implements types.Storage.
func (s *Store) Load(ctx context.Context) (types.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sqlstore.Load(ctx, s.db, sqlstore.Postgres)
}

// Save implements types.Storage.
func (s *Store) Save(ctx context.Context, snap types.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sqlstore.Save(ctx, s.db, sqlstore.Postgres, snap)
}

// Purge drops the roster tables.
func (s *Store) Purge(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sqlstore.Drop(ctx, s.db, sqlstore.Postgres)
}

// StoreID returns the identifier stamped on the first save.
func (s *Store) StoreID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := sqlstore.EnsureSchema(ctx, s.db, sqlstore.Postgres); err != nil {
		return "", err
	}
	return sqlstore.StoreID(ctx, s.db, sqlstore.Postgres)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
