package types

import "context"

// Storage persists a whole Snapshot at once. Every backend overwrites the
// complete state on Save; there is no incremental write path.
type Storage interface {
	// Load returns the stored snapshot.
	// Returns an error wrapping ErrStorageAbsent if nothing has been stored,
	// or one wrapping ErrCorruptData if the stored data cannot be decoded.
	Load(ctx context.Context) (Snapshot, error)

	// Save replaces the stored state with s.
	Save(ctx context.Context, s Snapshot) error

	// Purge removes the backing storage entirely. It reports false when
	// there was nothing to remove.
	Purge(ctx context.Context) (bool, error)

	// Location describes where the data lives, for messages and logs.
	Location() string

	// Close releases backend resources. Idempotent.
	Close() error
}
