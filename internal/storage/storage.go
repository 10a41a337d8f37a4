// Package storage selects a types.Storage implementation from configuration.
package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mesh-intelligence/roster/internal/jsonfile"
	"github.com/mesh-intelligence/roster/internal/postgres"
	"github.com/mesh-intelligence/roster/internal/s3"
	"github.com/mesh-intelligence/roster/internal/sqlite"
	"github.com/mesh-intelligence/roster/pkg/types"
)

// Open validates cfg and constructs the backend it names.
//
//	json:     <data_dir>/<file>            (default workers.json)
//	sqlite:   <data_dir>/roster.db
//	postgres: postgres.dsn
//	s3:       s3.bucket / s3.key
func Open(ctx context.Context, cfg types.Config) (types.Storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	switch cfg.Backend {
	case types.BackendJSON:
		return jsonfile.New(filepath.Join(dataDir, cfg.RecordsFile())), nil
	case types.BackendSQLite:
		return sqlite.NewBackend(filepath.Join(dataDir, sqlite.DBFileName)), nil
	case types.BackendPostgres:
		return postgres.NewStore(ctx, cfg.Postgres.DSN)
	case types.BackendS3:
		return s3.New(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("%w %q", types.ErrBackendUnknown, cfg.Backend)
	}
}

// Identified is implemented by backends that stamp a persistent store id.
type Identified interface {
	StoreID(ctx context.Context) (string, error)
}
