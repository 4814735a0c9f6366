// Package docstoretest holds the behaviour every docstore.Store backend must share.
package docstoretest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/hostelhub/pkg/docstore"
)

// RunStoreTests runs the shared store contract. newStore must return an empty store;
// it is called once per subtest.
func RunStoreTests(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Helper()

	t.Run("get missing document", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Get(context.Background(), "tasks", "nope")
		require.Error(t, err)
		assert.True(t, errors.Is(err, docstore.ErrNotFound))
	})

	t.Run("set then get", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		err := store.Set(ctx, "tasks", "t1", docstore.Document{
			"title":    "Clean kitchen",
			"priority": 5,
			"done":     false,
		})
		require.NoError(t, err)

		doc, err := store.Get(ctx, "tasks", "t1")
		require.NoError(t, err)
		assert.Equal(t, "Clean kitchen", doc["title"])
		assert.Equal(t, float64(5), doc["priority"])
		assert.Equal(t, false, doc["done"])
	})

	t.Run("set overwrites whole document", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, "tasks", "t1", docstore.Document{"title": "a", "board": "front"}))
		require.NoError(t, store.Set(ctx, "tasks", "t1", docstore.Document{"title": "b"}))

		doc, err := store.Get(ctx, "tasks", "t1")
		require.NoError(t, err)
		assert.Equal(t, docstore.Document{"title": "b"}, doc)
	})

	t.Run("nested maps round trip", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		table := map[string]any{
			"2024-01-10": map[string]any{
				"morning": []any{"v2", "v1"},
				"night":   []any{"v3"},
			},
		}
		require.NoError(t, store.Set(ctx, "schedules", "main", docstore.Document{
			"data":      table,
			"updatedAt": "2024-01-10T08:00:00Z",
		}))

		doc, err := store.Get(ctx, "schedules", "main")
		require.NoError(t, err)
		assert.Equal(t, table, doc["data"])
		assert.Equal(t, "2024-01-10T08:00:00Z", doc["updatedAt"])
	})

	t.Run("update merges fields", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, "workLogs", "w1", docstore.Document{
			"userId":    "u1",
			"startTime": "2024-01-10T08:00:00Z",
		}))
		require.NoError(t, store.Update(ctx, "workLogs", "w1", docstore.Document{
			"endTime":      "2024-01-10T08:05:00Z",
			"totalMinutes": 5,
		}))

		doc, err := store.Get(ctx, "workLogs", "w1")
		require.NoError(t, err)
		assert.Equal(t, "u1", doc["userId"])
		assert.Equal(t, "2024-01-10T08:00:00Z", doc["startTime"])
		assert.Equal(t, "2024-01-10T08:05:00Z", doc["endTime"])
		assert.Equal(t, float64(5), doc["totalMinutes"])
	})

	t.Run("update with null leaves field empty", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, "workLogs", "w1", docstore.Document{
			"userId":  "u1",
			"endTime": "2024-01-10T08:05:00Z",
		}))
		require.NoError(t, store.Update(ctx, "workLogs", "w1", docstore.Document{"endTime": nil}))

		doc, err := store.Get(ctx, "workLogs", "w1")
		require.NoError(t, err)
		// Backends may store null or drop the key; both read back as nil
		assert.Nil(t, doc["endTime"])
		assert.Equal(t, "u1", doc["userId"])
	})

	t.Run("update missing document", func(t *testing.T) {
		store := newStore(t)
		err := store.Update(context.Background(), "workLogs", "missing", docstore.Document{"notes": "x"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, docstore.ErrNotFound))
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, "messages", "m1", docstore.Document{"body": "hi"}))
		require.NoError(t, store.Delete(ctx, "messages", "m1"))
		require.NoError(t, store.Delete(ctx, "messages", "m1"))

		_, err := store.Get(ctx, "messages", "m1")
		assert.True(t, errors.Is(err, docstore.ErrNotFound))
	})

	t.Run("query filters and orders by id", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		docs := map[string]docstore.Document{
			"c": {"userId": "u1", "shiftTime": "08:00-10:00"},
			"a": {"userId": "u1", "shiftTime": "10:00-13:00"},
			"b": {"userId": "u2", "shiftTime": "08:00-10:00"},
		}
		for id, doc := range docs {
			require.NoError(t, store.Set(ctx, "workLogs", id, doc))
		}

		all, err := store.Query(ctx, "workLogs")
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"a", "b", "c"}, snapshotIDs(all))

		mine, err := store.Query(ctx, "workLogs", docstore.Eq("userId", "u1"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, snapshotIDs(mine))
		assert.Equal(t, "10:00-13:00", mine[0].Data["shiftTime"])

		both, err := store.Query(ctx, "workLogs",
			docstore.Eq("userId", "u1"),
			docstore.Eq("shiftTime", "08:00-10:00"),
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, snapshotIDs(both))

		none, err := store.Query(ctx, "workLogs", docstore.Eq("userId", "u9"))
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("collections are isolated", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, "tasks", "x", docstore.Document{"title": "task"}))
		require.NoError(t, store.Set(ctx, "events", "x", docstore.Document{"title": "event"}))

		doc, err := store.Get(ctx, "tasks", "x")
		require.NoError(t, err)
		assert.Equal(t, "task", doc["title"])

		events, err := store.Query(ctx, "events")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "event", events[0].Data["title"])
	})

	t.Run("returned documents are copies", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, "tasks", "t1", docstore.Document{"title": "original"}))

		doc, err := store.Get(ctx, "tasks", "t1")
		require.NoError(t, err)
		doc["title"] = "changed"

		again, err := store.Get(ctx, "tasks", "t1")
		require.NoError(t, err)
		assert.Equal(t, "original", again["title"])
	})
}

func snapshotIDs(snaps []docstore.Snapshot) []string {
	ids := make([]string, 0, len(snaps))
	for _, s := range snaps {
		ids = append(ids, s.ID)
	}
	return ids
}
