// Package roster is the public entry point for embedding the worker record
// store. It selects a backend from a types.Config, loads the stored state,
// and hands back a ready Store.
package roster

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	store "github.com/mesh-intelligence/roster/internal/roster"
	"github.com/mesh-intelligence/roster/internal/storage"
	"github.com/mesh-intelligence/roster/pkg/types"
)

// Version is the release version reported by the CLI.
const Version = "0.1.0"

// ModulePath is the Go module path of this repository.
const ModulePath = "github.com/mesh-intelligence/roster"

// Store is the record store. See Open.
type Store = store.Store

// Entry is one record returned by Get, Read and Search.
type Entry = store.Entry

// UpdateReport describes the outcome of Store.Update.
type UpdateReport = store.UpdateReport

// Open opens the backend named by cfg and loads it.
//
// If the stored data is corrupt the returned Store is empty and usable, and
// the error is a *types.CorruptDataWarning. Any other error closes the
// backend and returns a nil Store. The caller must Close the Store.
//
// Example:
//
//	st, err := roster.Open(ctx, types.Config{Backend: types.BackendJSON, DataDir: ".roster-db"}, zerolog.Nop())
//	if err != nil && !errors.Is(err, types.ErrCorruptData) {
//	    return err
//	}
//	defer st.Close()
func Open(ctx context.Context, cfg types.Config, log zerolog.Logger) (*Store, error) {
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st := store.New(backend, log)
	if err := st.Load(ctx); err != nil {
		if errors.Is(err, types.ErrCorruptData) {
			return st, err
		}
		_ = backend.Close()
		return nil, err
	}
	return st, nil
}
