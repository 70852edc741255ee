package viewstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logview-dev/logview/internal/engine"
	"github.com/logview-dev/logview/internal/model"
)

func TestStore_CreateSaveLoadRoundTrip(t *testing.T) {
	store := New(t.TempDir())

	created, err := store.Create("default", `\.json$`)
	require.NoError(t, err)
	assert.Equal(t, []string{"path"}, created.Columns.Order)
	assert.Equal(t, model.SortAsc, created.Rows.Sort.Direction)

	created.Columns.Hidden = []string{"note"}
	created.Columns.Format = map[string]string{"step": "{d:04}"}
	created.Columns.Computed = []model.ComputedColumn{{Name: "score", Expr: `row["loss"] * 10`}}
	created.Rows.PinnedIDs = []string{"run/a.json"}
	_, err = store.Save(created)
	require.NoError(t, err)

	loaded, err := store.Load("default")
	require.NoError(t, err)
	assert.Equal(t, created, loaded)
}

func TestStore_LoadMissingViewHasRemediation(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.Load("nope")
	require.Error(t, err)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.Name)
	assert.Equal(t, store.Root(), notFound.Root)
	assert.Contains(t, err.Error(), "logview create")
	assert.Contains(t, err.Error(), store.Root())
}

func TestStore_LegacyFileWithoutFormatAndComputed(t *testing.T) {
	root := t.TempDir()
	store := New(root)
	dir := store.Dir()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	legacy := `{
  "name": "old",
  "pattern": ".*",
  "columns": {"order": ["path"], "hidden": [], "alias": {}},
  "rows": {"pinned_ids": [], "sort": {"by": null, "direction": "asc"}}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.json"), []byte(legacy), 0o644))

	view, err := store.Load("old")
	require.NoError(t, err)
	assert.NotNil(t, view.Columns.Format)
	assert.Empty(t, view.Columns.Format)
	assert.NotNil(t, view.Columns.Computed)
	assert.Empty(t, view.Columns.Computed)
}

func TestStore_SaveAliasConflictLeavesFileByteIdentical(t *testing.T) {
	store := New(t.TempDir())
	view, err := store.Create("default", `.*`)
	require.NoError(t, err)

	path, err := store.Save(view)
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	view.Columns.Alias = map[string]string{"loss": "same", "step": "same"}
	_, err = store.Save(view)
	require.Error(t, err)
	var conflict *engine.AliasConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "same", conflict.Alias)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_CreateFromCopiesContent(t *testing.T) {
	store := New(t.TempDir())
	source, err := store.Create("default", `\.json$`)
	require.NoError(t, err)
	source.Columns.Hidden = []string{"note"}
	_, err = store.Save(source)
	require.NoError(t, err)

	copied, err := store.CreateFrom("fork", "default")
	require.NoError(t, err)
	assert.Equal(t, "fork", copied.Name)
	assert.Equal(t, source.Columns, copied.Columns)
	assert.Equal(t, source.Rows, copied.Rows)

	_, err = store.CreateFrom("fork", "default")
	assert.Error(t, err, "duplicate name must fail")
}

func TestStore_RenameChangesIdentityNotContent(t *testing.T) {
	store := New(t.TempDir())
	view, err := store.Create("old", `\.json$`)
	require.NoError(t, err)
	view.Rows.PinnedIDs = []string{"a.json"}
	_, err = store.Save(view)
	require.NoError(t, err)

	renamed, err := store.Rename("old", "new")
	require.NoError(t, err)
	assert.Equal(t, "new", renamed.Name)
	assert.Equal(t, view.Rows, renamed.Rows)

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, names)

	_, err = store.Load("old")
	assert.Error(t, err)
}

func TestStore_ListSortedAndEmptyWithoutDir(t *testing.T) {
	store := New(t.TempDir())
	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = store.Create("zeta", `.*`)
	require.NoError(t, err)
	_, err = store.Create("alpha", `.*`)
	require.NoError(t, err)

	names, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestStore_RejectsBadNames(t *testing.T) {
	store := New(t.TempDir())
	for _, name := range []string{"", "  ", "a/b", `a\b`} {
		_, err := store.Create(name, `.*`)
		assert.Error(t, err, "name %q", name)
	}
}
