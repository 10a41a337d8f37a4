// Package roster implements the record store: workers partitioned by
// category, sequential per-category identifiers, and whole-state persistence
// through a types.Storage backend.
package roster

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/roster/pkg/types"
)

// Entry is one record as seen by readers: where it lives and its field map.
type Entry struct {
	Category string
	ID       string
	Fields   types.FieldMap
}

// UpdateReport lists the fields an Update changed and the warnings for the
// fields it rejected.
type UpdateReport struct {
	Applied  []string
	Warnings []error
}

// shelf holds one category: workers by identifier, their insertion order,
// and the next identifier to assign.
type shelf struct {
	order   []string
	workers map[string]*types.Worker
	next    int
}

func newShelf() *shelf {
	return &shelf{workers: make(map[string]*types.Worker), next: 1}
}

// Store holds every worker in memory and writes the whole state to its
// Storage after each mutation. A Store is not safe for concurrent use.
type Store struct {
	storage types.Storage
	log     zerolog.Logger
	shelves map[string]*shelf
}

// New creates an empty store over storage. Call Load to read existing data.
func New(storage types.Storage, log zerolog.Logger) *Store {
	s := &Store{
		storage: storage,
		log:     log.With().Str("component", "roster").Str("storage", storage.Location()).Logger(),
	}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.shelves = make(map[string]*shelf, len(types.Categories))
	for _, c := range types.Categories {
		s.shelves[c] = newShelf()
	}
}

// Storage returns the backend the store persists to.
func (s *Store) Storage() types.Storage { return s.storage }

// Close releases the backend.
func (s *Store) Close() error { return s.storage.Close() }

// Load replaces the in-memory state with the stored snapshot.
//
// Absent storage yields empty categories and a nil error. Undecodable or
// inconsistent data yields empty categories and a *types.CorruptDataWarning,
// which callers may treat as non-fatal. Any other read error is returned
// with the state left untouched.
func (s *Store) Load(ctx context.Context) error {
	snap, err := s.storage.Load(ctx)
	if errors.Is(err, types.ErrStorageAbsent) {
		s.reset()
		s.log.Debug().Msg("no stored data, starting empty")
		return nil
	}
	if errors.Is(err, types.ErrCorruptData) {
		return s.corrupt(err)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", s.storage.Location(), err)
	}

	shelves, err := buildShelves(snap)
	if err != nil {
		return s.corrupt(err)
	}
	s.shelves = shelves
	s.log.Debug().Int("records", snap.Len()).Msg("loaded")
	return nil
}

func (s *Store) corrupt(err error) error {
	s.reset()
	w := &types.CorruptDataWarning{Source: s.storage.Location(), Err: err}
	s.log.Warn().Err(err).Msg("stored data is corrupt, starting empty")
	return w
}

// buildShelves converts a snapshot into shelves and derives each counter as
// the largest identifier plus one.
func buildShelves(snap types.Snapshot) (map[string]*shelf, error) {
	shelves := make(map[string]*shelf, len(types.Categories))
	for _, c := range types.Categories {
		sh := newShelf()
		for _, rec := range snap[c] {
			n, err := strconv.Atoi(rec.ID)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: %s identifier %q is not a positive integer", types.ErrCorruptData, c, rec.ID)
			}
			if _, dup := sh.workers[rec.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate %s identifier %q", types.ErrCorruptData, c, rec.ID)
			}
			w, err := types.WorkerFromFieldMap(rec.Fields)
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", c, rec.ID, err)
			}
			if home, err := types.CategoryOf(w.Kind()); err != nil || home != c {
				return nil, fmt.Errorf("%w: %s/%s holds %s", types.ErrCorruptData, c, rec.ID, w.Kind())
			}
			sh.workers[rec.ID] = w
			sh.order = append(sh.order, rec.ID)
			if n >= sh.next {
				sh.next = n + 1
			}
		}
		shelves[c] = sh
	}
	return shelves, nil
}

// Snapshot returns the current state in its persisted form.
func (s *Store) Snapshot() types.Snapshot {
	snap := types.NewSnapshot()
	for _, c := range types.Categories {
		sh := s.shelves[c]
		for _, id := range sh.order {
			snap[c] = append(snap[c], types.Record{ID: id, Fields: sh.workers[id].FieldMap()})
		}
	}
	return snap
}

// Save writes the whole state to storage. Failures are *types.PersistenceError.
func (s *Store) Save(ctx context.Context) error {
	snap := s.Snapshot()
	if err := s.storage.Save(ctx, snap); err != nil {
		s.log.Error().Err(err).Msg("save failed")
		return &types.PersistenceError{Op: "save", Target: s.storage.Location(), Err: err}
	}
	s.log.Debug().Int("records", snap.Len()).Msg("saved")
	return nil
}

func (s *Store) shelf(category string) (*shelf, error) {
	sh, ok := s.shelves[category]
	if !ok {
		return nil, fmt.Errorf("%w %q", types.ErrInvalidCategory, category)
	}
	return sh, nil
}

// Create builds a worker of the category's kind from in, assigns it the next
// identifier, stores it and saves. Text fields are trimmed and title-cased;
// values are not validated here (see types.WorkerInput.Validate).
//
// When saving fails the identifier is still returned together with the
// *types.PersistenceError: the worker is held in memory.
func (s *Store) Create(ctx context.Context, category string, in types.WorkerInput) (string, error) {
	sh, err := s.shelf(category)
	if err != nil {
		return "", err
	}
	kind, _ := types.KindOf(category)
	w, err := in.Build(kind)
	if err != nil {
		return "", err
	}

	id := strconv.Itoa(sh.next)
	sh.next++
	sh.workers[id] = w
	sh.order = append(sh.order, id)
	s.log.Info().Str("category", category).Str("id", id).Msg("created")

	return id, s.Save(ctx)
}

// Get returns one record.
func (s *Store) Get(category, id string) (Entry, error) {
	sh, err := s.shelf(category)
	if err != nil {
		return Entry{}, err
	}
	w, ok := sh.workers[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s/%s", types.ErrNotFound, category, id)
	}
	return Entry{Category: category, ID: id, Fields: w.FieldMap()}, nil
}

// Read returns the records of a category, or of every category for
// types.ScopeAll, in insertion order. The sequence is evaluated lazily and
// restarts from the beginning each time it is ranged over.
func (s *Store) Read(scope string) (iter.Seq[Entry], error) {
	categories, err := types.ScopeCategories(scope)
	if err != nil {
		return nil, fmt.Errorf("%w %q", err, scope)
	}
	return func(yield func(Entry) bool) {
		for _, c := range categories {
			sh := s.shelves[c]
			for _, id := range sh.order {
				if !yield(Entry{Category: c, ID: id, Fields: sh.workers[id].FieldMap()}) {
					return
				}
			}
		}
	}, nil
}

// Search returns the records whose name or position contains keyword,
// ignoring case, across all categories in insertion order.
func (s *Store) Search(keyword string) iter.Seq[Entry] {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	return func(yield func(Entry) bool) {
		for _, c := range types.Categories {
			sh := s.shelves[c]
			for _, id := range sh.order {
				w := sh.workers[id]
				if !strings.Contains(strings.ToLower(w.Name()), needle) &&
					!strings.Contains(strings.ToLower(w.Position()), needle) {
					continue
				}
				if !yield(Entry{Category: c, ID: id, Fields: w.FieldMap()}) {
					return
				}
			}
		}
	}
}

// Update applies changes, keyed by field label, to one record. Blank values
// keep the current value. Each rejected field produces a warning in the
// report and leaves the field unchanged; the remaining fields still apply.
// The store is saved when at least one field changed.
func (s *Store) Update(ctx context.Context, category, id string, changes map[string]string) (UpdateReport, error) {
	var report UpdateReport
	sh, err := s.shelf(category)
	if err != nil {
		return report, err
	}
	w, ok := sh.workers[id]
	if !ok {
		return report, fmt.Errorf("%w: %s/%s", types.ErrNotFound, category, id)
	}

	for _, label := range updateOrder(w, changes) {
		raw := changes[label]
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if err := w.SetField(label, raw); err != nil {
			s.log.Warn().Err(err).Str("category", category).Str("id", id).Msg("field rejected")
			report.Warnings = append(report.Warnings, err)
			continue
		}
		report.Applied = append(report.Applied, label)
	}

	if len(report.Applied) == 0 {
		return report, nil
	}
	s.log.Info().Str("category", category).Str("id", id).Strs("fields", report.Applied).Msg("updated")
	return report, s.Save(ctx)
}

// updateOrder returns the labels in changes, known fields first in field-map
// order, then any unknown labels sorted.
func updateOrder(w *types.Worker, changes map[string]string) []string {
	labels := make([]string, 0, len(changes))
	known := make(map[string]bool)
	for _, l := range w.FieldMap().Labels() {
		known[l] = true
		if _, ok := changes[l]; ok {
			labels = append(labels, l)
		}
	}
	var extra []string
	for l := range changes {
		if !known[l] {
			extra = append(extra, l)
		}
	}
	slices.Sort(extra)
	return append(labels, extra...)
}

// Delete removes one record and saves. The category counter is not changed,
// so the identifier is never reused.
func (s *Store) Delete(ctx context.Context, category, id string) error {
	sh, err := s.shelf(category)
	if err != nil {
		return err
	}
	if _, ok := sh.workers[id]; !ok {
		return fmt.Errorf("%w: %s/%s", types.ErrNotFound, category, id)
	}
	delete(sh.workers, id)
	sh.order = slices.DeleteFunc(sh.order, func(v string) bool { return v == id })
	s.log.Info().Str("category", category).Str("id", id).Msg("deleted")
	return s.Save(ctx)
}

// Clear empties a category, or every category for types.ScopeAll, and saves.
// Counters are kept.
func (s *Store) Clear(ctx context.Context, scope string) error {
	categories, err := types.ScopeCategories(scope)
	if err != nil {
		return fmt.Errorf("%w %q", err, scope)
	}
	for _, c := range categories {
		sh := s.shelves[c]
		sh.workers = make(map[string]*types.Worker)
		sh.order = nil
	}
	s.log.Info().Str("scope", scope).Msg("cleared")
	return s.Save(ctx)
}

// Purge removes the backing storage entirely and resets the store to empty
// categories with fresh counters. It reports whether anything was removed.
func (s *Store) Purge(ctx context.Context) (bool, error) {
	s.reset()
	removed, err := s.storage.Purge(ctx)
	if err != nil {
		return false, &types.PersistenceError{Op: "purge", Target: s.storage.Location(), Err: err}
	}
	s.log.Info().Bool("removed", removed).Msg("purged")
	return removed, nil
}

// NextID returns the identifier the next Create in category will assign,
// or 0 for an unknown category.
func (s *Store) NextID(category string) int {
	if sh, ok := s.shelves[category]; ok {
		return sh.next
	}
	return 0
}

// Len returns the number of records in category, or 0 for an unknown one.
func (s *Store) Len(category string) int {
	if sh, ok := s.shelves[category]; ok {
		return len(sh.order)
	}
	return 0
}
