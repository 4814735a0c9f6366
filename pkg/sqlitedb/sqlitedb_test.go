package sqlitedb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/hostelhub/pkg/docstore"
	"github.com/jakechorley/hostelhub/pkg/docstore/docstoretest"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "hostel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_Contract(t *testing.T) {
	docstoretest.RunStoreTests(t, func(t *testing.T) docstore.Store {
		return openTestStore(t)
	})
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostel.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "schedules", "main", docstore.Document{"data": map[string]any{}}))
	require.NoError(t, store.Close())

	// Migrations already applied; reopening must not fail
	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	_, err = reopened.Get(ctx, "schedules", "main")
	assert.NoError(t, err)
}

func TestStore_UpdateReplacesNestedValues(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "schedules", "main", docstore.Document{
		"data": map[string]any{"2024-01-10": map[string]any{"morning": []any{"v1"}}},
	}))
	require.NoError(t, store.Update(ctx, "schedules", "main", docstore.Document{
		"data": map[string]any{"2024-01-11": map[string]any{"night": []any{"v2"}}},
	}))

	doc, err := store.Get(ctx, "schedules", "main")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"2024-01-11": map[string]any{"night": []any{"v2"}}}, doc["data"])
}

func TestStore_QueryBoolFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "workLogs", "a", docstore.Document{"forceClosed": true}))
	require.NoError(t, store.Set(ctx, "workLogs", "b", docstore.Document{"forceClosed": false}))

	results, err := store.Query(ctx, "workLogs", docstore.Eq("forceClosed", true))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
}
