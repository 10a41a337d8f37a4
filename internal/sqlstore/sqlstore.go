// Package sqlstore persists a roster snapshot into SQL tables through
// database/sql. It holds the schema and the load/save logic shared by the
// sqlite and postgres backends; each backend supplies its Dialect and
// connection handling.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/roster/pkg/types"
)

// Meta keys stored in roster_meta.
const (
	MetaStoreID = "store_id"
	MetaSavedAt = "saved_at"
)

// Dialect captures the differences between SQL engines.
type Dialect struct {
	Name        string
	PayloadType string             // column type for field-map JSON
	Placeholder func(n int) string // n is 1-based
}

// SQLite uses ? placeholders and TEXT payloads.
var SQLite = Dialect{
	Name:        "sqlite",
	PayloadType: "TEXT",
	Placeholder: func(int) string { return "?" },
}

// Postgres uses $n placeholders. Payloads are JSON rather than JSONB so the
// field order written is the order read back.
var Postgres = Dialect{
	Name:        "postgres",
	PayloadType: "JSON",
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
}

// Schema returns the DDL statements for d.
func (d Dialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS roster_records (
    category TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    id TEXT NOT NULL,
    payload ` + d.PayloadType + ` NOT NULL,
    PRIMARY KEY (category, id)
)`,
		`CREATE TABLE IF NOT EXISTS roster_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`,
	}
}

// DropStatements returns the statements that remove every roster table.
func (d Dialect) DropStatements() []string {
	return []string{
		`DROP TABLE IF EXISTS roster_records`,
		`DROP TABLE IF EXISTS roster_meta`,
	}
}

func (d Dialect) args(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = d.Placeholder(i + 1)
	}
	return strings.Join(ph, ", ")
}

// EnsureSchema creates the roster tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range d.Schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// StoreID returns the identifier assigned to this database on its first
// save. It wraps types.ErrStorageAbsent if nothing was ever saved.
func StoreID(ctx context.Context, db *sql.DB, d Dialect) (string, error) {
	var id string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM roster_meta WHERE key = `+d.Placeholder(1), MetaStoreID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", types.ErrStorageAbsent
	}
	if err != nil {
		return "", fmt.Errorf("select store id: %w", err)
	}
	return id, nil
}

// Load reads the snapshot. Errors decoding stored payloads wrap
// types.ErrCorruptData.
func Load(ctx context.Context, db *sql.DB, d Dialect) (types.Snapshot, error) {
	if err := EnsureSchema(ctx, db, d); err != nil {
		return nil, err
	}
	if _, err := StoreID(ctx, db, d); err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT category, id, payload FROM roster_records ORDER BY category, ordinal`)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snap := types.NewSnapshot()
	for rows.Next() {
		var category, id, payload string
		if err := rows.Scan(&category, &id, &payload); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if _, err := types.KindOf(category); err != nil {
			return nil, fmt.Errorf("%w: category %q", types.ErrCorruptData, category)
		}
		var fields types.FieldMap
		if err := fields.UnmarshalJSON([]byte(payload)); err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %w", types.ErrCorruptData, category, id, err)
		}
		snap[category] = append(snap[category], types.Record{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return snap, nil
}

// Save replaces every stored record with snap in one transaction and stamps
// the save time. The store id is generated on the first save and kept.
func Save(ctx context.Context, db *sql.DB, d Dialect, snap types.Snapshot) (retErr error) {
	if err := EnsureSchema(ctx, db, d); err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM roster_records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	insert := `INSERT INTO roster_records (category, ordinal, id, payload) VALUES (` + d.args(4) + `)`
	for _, c := range types.Categories {
		for i, rec := range snap[c] {
			payload, err := rec.Fields.MarshalJSON()
			if err != nil {
				return fmt.Errorf("encode %s/%s: %w", c, rec.ID, err)
			}
			if _, err := tx.ExecContext(ctx, insert, c, i, rec.ID, string(payload)); err != nil {
				return fmt.Errorf("insert %s/%s: %w", c, rec.ID, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO roster_meta (key, value) VALUES (`+d.args(2)+`) ON CONFLICT (key) DO NOTHING`,
		MetaStoreID, newStoreID()); err != nil {
		return fmt.Errorf("stamp store id: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO roster_meta (key, value) VALUES (`+d.args(2)+`) ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		MetaSavedAt, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("stamp save time: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Drop removes the roster tables. It reports false if nothing had been saved.
func Drop(ctx context.Context, db *sql.DB, d Dialect) (bool, error) {
	_, err := StoreID(ctx, db, d)
	existed := err == nil
	for _, stmt := range d.DropStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return false, fmt.Errorf("drop tables: %w", err)
		}
	}
	return existed, nil
}

// newStoreID generates a UUID v7, falling back to v4.
func newStoreID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
