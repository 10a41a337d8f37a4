package roster

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/roster/internal/jsonfile"
	"github.com/mesh-intelligence/roster/pkg/types"
)

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func hourlyInput(name, position string) types.WorkerInput {
	return types.WorkerInput{
		Profile:     types.Profile{Name: name, Age: 30, Gender: "f", Position: position, Salary: amount("1000")},
		HourlyRate:  amount("12.5"),
		HoursWorked: amount("40"),
	}
}

func salariedInput(name, position string) types.WorkerInput {
	return types.WorkerInput{
		Profile:      types.Profile{Name: name, Age: 45, Gender: "m", Position: position, Salary: amount("3000")},
		MonthlyBonus: amount("150"),
	}
}

// setupStore returns a loaded store over a JSON file in a fresh temp dir.
func setupStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workers.json")
	st := New(jsonfile.New(path), zerolog.Nop())
	require.NoError(t, st.Load(context.Background()))
	return st, path
}

func collect(t *testing.T, seq func(func(Entry) bool)) []string {
	t.Helper()
	var out []string
	for e := range seq {
		out = append(out, e.Category+"/"+e.ID)
	}
	return out
}

func TestLoadAbsentStartsEmpty(t *testing.T) {
	st, path := setupStore(t)
	assert.Equal(t, 0, st.Len(types.CategoryHourly))
	assert.Equal(t, 1, st.NextID(types.CategoryHourly))
	assert.Equal(t, 1, st.NextID(types.CategorySalaried))
	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "load must not create the file")
}

func TestCreateNormalizesAndPersists(t *testing.T) {
	ctx := context.Background()
	st, path := setupStore(t)

	id, err := st.Create(ctx, types.CategoryHourly, hourlyInput("jane doe", "clerk"))
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	e, err := st.Get(types.CategoryHourly, "1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", e.Fields.Text(types.LabelName))
	assert.Equal(t, "Clerk", e.Fields.Text(types.LabelPosition))
	assert.Equal(t, "HourlyWorker", e.Fields.Text(types.LabelType))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Jane Doe"`)
}

func TestCreateInvalidCategory(t *testing.T) {
	st, _ := setupStore(t)
	_, err := st.Create(context.Background(), "contractor", hourlyInput("a", "b"))
	assert.ErrorIs(t, err, types.ErrInvalidCategory)
}

func TestIdentifiersAreMonotonic(t *testing.T) {
	ctx := context.Background()
	st, _ := setupStore(t)

	for range 3 {
		_, err := st.Create(ctx, types.CategoryHourly, hourlyInput("a", "b"))
		require.NoError(t, err)
	}
	require.NoError(t, st.Delete(ctx, types.CategoryHourly, "3"))

	id, err := st.Create(ctx, types.CategoryHourly, hourlyInput("c", "d"))
	require.NoError(t, err)
	assert.Equal(t, "4", id, "deleted identifiers are not reused")

	sid, err := st.Create(ctx, types.CategorySalaried, salariedInput("e", "f"))
	require.NoError(t, err)
	assert.Equal(t, "1", sid, "counters are per category")

	require.NoError(t, st.Clear(ctx, types.ScopeAll))
	id, err = st.Create(ctx, types.CategoryHourly, hourlyInput("g", "h"))
	require.NoError(t, err)
	assert.Equal(t, "5", id, "clear keeps counters")
}

func TestReloadDerivesCounterFromMaxID(t *testing.T) {
	ctx := context.Background()
	st, path := setupStore(t)
	for range 3 {
		_, err := st.Create(ctx, types.CategoryHourly, hourlyInput("a", "b"))
		require.NoError(t, err)
	}
	require.NoError(t, st.Delete(ctx, types.CategoryHourly, "1"))

	again := New(jsonfile.New(path), zerolog.Nop())
	require.NoError(t, again.Load(ctx))
	assert.Equal(t, 4, again.NextID(types.CategoryHourly))
	assert.Equal(t, []string{"hourly/2", "hourly/3"}, collect(t, mustRead(t, again, types.CategoryHourly)))
}

func TestReloadAfterDeletingHighestIDReusesIt(t *testing.T) {
	ctx := context.Background()
	st, path := setupStore(t)
	for range 3 {
		_, err := st.Create(ctx, types.CategoryHourly, hourlyInput("a", "b"))
		require.NoError(t, err)
	}
	require.NoError(t, st.Delete(ctx, types.CategoryHourly, "3"))
	assert.Equal(t, 4, st.NextID(types.CategoryHourly), "the running store keeps its counter")

	again := New(jsonfile.New(path), zerolog.Nop())
	require.NoError(t, again.Load(ctx))
	id, err := again.Create(ctx, types.CategoryHourly, hourlyInput("c", "d"))
	require.NoError(t, err)
	assert.Equal(t, "3", id)

	require.NoError(t, again.Clear(ctx, types.CategoryHourly))
	fresh := New(jsonfile.New(path), zerolog.Nop())
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, 1, fresh.NextID(types.CategoryHourly))
}

func mustRead(t *testing.T, st *Store, scope string) func(func(Entry) bool) {
	t.Helper()
	seq, err := st.Read(scope)
	require.NoError(t, err)
	return seq
}

func TestReadScopes(t *testing.T) {
	ctx := context.Background()
	st, _ := setupStore(t)
	_, err := st.Create(ctx, types.CategorySalaried, salariedInput("s1", "nurse"))
	require.NoError(t, err)
	_, err = st.Create(ctx, types.CategoryHourly, hourlyInput("h1", "clerk"))
	require.NoError(t, err)
	_, err = st.Create(ctx, types.CategoryHourly, hourlyInput("h2", "clerk"))
	require.NoError(t, err)

	assert.Equal(t, []string{"hourly/1", "hourly/2", "salaried/1"}, collect(t, mustRead(t, st, types.ScopeAll)))
	assert.Equal(t, []string{"salaried/1"}, collect(t, mustRead(t, st, types.CategorySalaried)))

	_, err = st.Read("interns")
	assert.ErrorIs(t, err, types.ErrInvalidCategory)

	t.Run("sequence restarts", func(t *testing.T) {
		seq := mustRead(t, st, types.ScopeAll)
		first := collect(t, seq)
		assert.Equal(t, first, collect(t, seq))
	})

	t.Run("early stop", func(t *testing.T) {
		n := 0
		for range mustRead(t, st, types.ScopeAll) {
			n++
			break
		}
		assert.Equal(t, 1, n)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	st, _ := setupStore(t)
	_, err := st.Create(ctx, types.CategoryHourly, hourlyInput("jane doe", "clerk"))
	require.NoError(t, err)
	_, err = st.Create(ctx, types.CategorySalaried, salariedInput("bob clerkson", "nurse"))
	require.NoError(t, err)
	_, err = st.Create(ctx, types.CategorySalaried, salariedInput("ann lee", "head nurse"))
	require.NoError(t, err)

	tests := []struct {
		keyword string
		want    []string
	}{
		{"clerk", []string{"hourly/1", "salaried/1"}},
		{"NURSE", []string{"salaried/1", "salaried/2"}},
		{"lee", []string{"salaried/2"}},
		{"surgeon", nil},
		{"", []string{"hourly/1", "salaried/1", "salaried/2"}},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			assert.Equal(t, tt.want, collect(t, st.Search(tt.keyword)))
		})
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	st, path := setupStore(t)
	_, err := st.Create(ctx, types.CategoryHourly, hourlyInput("jane doe", "clerk"))
	require.NoError(t, err)

	t.Run("invalid value keeps field and applies the rest", func(t *testing.T) {
		report, err := st.Update(ctx, types.CategoryHourly, "1", map[string]string{
			types.LabelSalary:      "-5",
			types.LabelHoursWorked: "38",
			types.LabelName:        "",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{types.LabelHoursWorked}, report.Applied)
		require.Len(t, report.Warnings, 1)
		assert.ErrorIs(t, report.Warnings[0], types.ErrValidation)

		e, err := st.Get(types.CategoryHourly, "1")
		require.NoError(t, err)
		assert.Equal(t, "1000", e.Fields.Text(types.LabelSalary))
		assert.Equal(t, "38", e.Fields.Text(types.LabelHoursWorked))
		assert.Equal(t, "Jane Doe", e.Fields.Text(types.LabelName))
	})

	t.Run("type and unknown labels are warnings", func(t *testing.T) {
		report, err := st.Update(ctx, types.CategoryHourly, "1", map[string]string{
			types.LabelType:         "SalariedWorker",
			types.LabelMonthlyBonus: "10",
			"Shoe Size":             "42",
		})
		require.NoError(t, err)
		assert.Empty(t, report.Applied)
		assert.Len(t, report.Warnings, 3)
	})

	t.Run("changes are persisted", func(t *testing.T) {
		_, err := st.Update(ctx, types.CategoryHourly, "1", map[string]string{types.LabelPosition: "senior clerk"})
		require.NoError(t, err)

		again := New(jsonfile.New(path), zerolog.Nop())
		require.NoError(t, again.Load(ctx))
		e, err := again.Get(types.CategoryHourly, "1")
		require.NoError(t, err)
		assert.Equal(t, "Senior Clerk", e.Fields.Text(types.LabelPosition))
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := st.Update(ctx, types.CategoryHourly, "9", map[string]string{types.LabelAge: "40"})
		assert.ErrorIs(t, err, types.ErrNotFound)
		_, err = st.Update(ctx, "temps", "1", nil)
		assert.ErrorIs(t, err, types.ErrInvalidCategory)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	st, _ := setupStore(t)
	_, err := st.Create(ctx, types.CategoryHourly, hourlyInput("a", "b"))
	require.NoError(t, err)

	require.NoError(t, st.Delete(ctx, types.CategoryHourly, "1"))
	_, err = st.Get(types.CategoryHourly, "1")
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.ErrorIs(t, st.Delete(ctx, types.CategoryHourly, "1"), types.ErrNotFound)
	assert.ErrorIs(t, st.Delete(ctx, types.CategorySalaried, "1"), types.ErrNotFound)
	assert.ErrorIs(t, st.Delete(ctx, "nobody", "1"), types.ErrInvalidCategory)
}

func TestClearOneCategory(t *testing.T) {
	ctx := context.Background()
	st, _ := setupStore(t)
	_, err := st.Create(ctx, types.CategoryHourly, hourlyInput("a", "b"))
	require.NoError(t, err)
	_, err = st.Create(ctx, types.CategorySalaried, salariedInput("c", "d"))
	require.NoError(t, err)

	require.NoError(t, st.Clear(ctx, types.CategoryHourly))
	assert.Equal(t, 0, st.Len(types.CategoryHourly))
	assert.Equal(t, 1, st.Len(types.CategorySalaried))
	assert.ErrorIs(t, st.Clear(ctx, "everyone"), types.ErrInvalidCategory)
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	st, path := setupStore(t)
	_, err := st.Create(ctx, types.CategoryHourly, hourlyInput("a", "b"))
	require.NoError(t, err)

	removed, err := st.Purge(ctx)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoFileExists(t, path)
	assert.Equal(t, 0, st.Len(types.CategoryHourly))
	assert.Equal(t, 1, st.NextID(types.CategoryHourly), "purge resets counters")

	removed, err = st.Purge(ctx)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, path := setupStore(t)
	_, err := st.Create(ctx, types.CategoryHourly, hourlyInput("jane doe", "clerk"))
	require.NoError(t, err)
	_, err = st.Create(ctx, types.CategorySalaried, salariedInput("bob", "nurse"))
	require.NoError(t, err)
	_, err = st.Create(ctx, types.CategoryHourly, hourlyInput("max", "porter"))
	require.NoError(t, err)

	again := New(jsonfile.New(path), zerolog.Nop())
	require.NoError(t, again.Load(ctx))

	texts := func(s *Store) map[string][]string {
		out := map[string][]string{}
		for e := range mustRead(t, s, types.ScopeAll) {
			key := e.Category + "/" + e.ID
			for _, f := range e.Fields {
				out[key] = append(out[key], f.Label+"="+e.Fields.Text(f.Label))
			}
		}
		return out
	}
	if diff := cmp.Diff(texts(st), texts(again)); diff != "" {
		t.Errorf("reloaded store differs (-want +got):\n%s", diff)
	}
	assert.Equal(t, st.NextID(types.CategoryHourly), again.NextID(types.CategoryHourly))
}

func TestLoadCorruptResetsToEmpty(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", "{ this is not json"},
		{"empty file", ""},
		{"non-integer identifier", `{"hourly":{"abc":{"Type":"HourlyWorker","Name":"A","Age":1,"Gender":"F","Position":"P","Salary":1,"Hourly Rate":1,"Hours Worked":0}},"salaried":{}}`},
		{"wrong variant for category", `{"hourly":{},"salaried":{"1":{"Type":"HourlyWorker","Name":"A","Age":1,"Gender":"F","Position":"P","Salary":1,"Hourly Rate":1,"Hours Worked":0}}}`},
		{"missing field", `{"hourly":{"1":{"Type":"HourlyWorker","Name":"A"}},"salaried":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "workers.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0o644))

			st := New(jsonfile.New(path), zerolog.Nop())
			err := st.Load(context.Background())

			var warn *types.CorruptDataWarning
			require.ErrorAs(t, err, &warn)
			assert.ErrorIs(t, err, types.ErrCorruptData)
			assert.Equal(t, path, warn.Source)
			assert.Equal(t, 0, st.Len(types.CategoryHourly))
			assert.Equal(t, 0, st.Len(types.CategorySalaried))

			id, err := st.Create(context.Background(), types.CategoryHourly, hourlyInput("a", "b"))
			require.NoError(t, err)
			assert.Equal(t, "1", id)
		})
	}
}

// failingStorage loads empty and fails every write.
type failingStorage struct{ err error }

func (f failingStorage) Load(context.Context) (types.Snapshot, error) {
	return nil, types.ErrStorageAbsent
}
func (f failingStorage) Save(context.Context, types.Snapshot) error { return f.err }
func (f failingStorage) Purge(context.Context) (bool, error) { return false, f.err }
func (f failingStorage) Location() string { return "failing" }
func (f failingStorage) Close() error { return nil }

func TestPersistenceErrors(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("read-only file system")
	st := New(failingStorage{err: cause}, zerolog.Nop())
	require.NoError(t, st.Load(ctx))

	id, err := st.Create(ctx, types.CategoryHourly, hourlyInput("a", "b"))
	var pe *types.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "save", pe.Op)
	assert.Equal(t, "1", id)
	assert.Equal(t, 1, st.Len(types.CategoryHourly), "worker stays in memory")

	_, err = st.Purge(ctx)
	assert.ErrorIs(t, err, types.ErrPersistence)
}

func TestPersistenceErrorOnUnwritableDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	st := New(jsonfile.New(filepath.Join(dir, "workers.json")), zerolog.Nop())
	require.NoError(t, st.Load(context.Background()))
	_, err := st.Create(context.Background(), types.CategorySalaried, salariedInput("a", "b"))
	assert.ErrorIs(t, err, types.ErrPersistence)
}

func TestLoadReadErrorKeepsState(t *testing.T) {
	ctx := context.Background()
	st, _ := setupStore(t)
	_, err := st.Create(ctx, types.CategoryHourly, hourlyInput("a", "b"))
	require.NoError(t, err)

	st.storage = brokenReader{}
	err = st.Load(ctx)
	require.Error(t, err)
	assert.False(t, errors.Is(err, types.ErrCorruptData))
	assert.Equal(t, 1, st.Len(types.CategoryHourly))
}

type brokenReader struct{ failingStorage }

func (brokenReader) Load(context.Context) (types.Snapshot, error) {
	return nil, errors.New("permission denied")
}

func TestUpdateOrder(t *testing.T) {
	w, err := hourlyInput("a", "b").Build(types.KindHourly)
	require.NoError(t, err)
	got := updateOrder(w, map[string]string{
		"Zeta":                 "1",
		types.LabelHoursWorked: "1",
		types.LabelName:        "x",
		"Alpha":                "1",
	})
	assert.Equal(t, []string{types.LabelName, types.LabelHoursWorked, "Alpha", "Zeta"}, got)
	assert.True(t, slices.IsSorted(got[2:]))
}
