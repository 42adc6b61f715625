package docstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreContract runs the behaviour every backend must share.
func testStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("returns nil for missing document", func(t *testing.T) {
		store := newStore(t)

		data, err := store.GetDocument(ctx, "owner-1", Schedules, "2024-03-04")

		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("replaces whole document on set", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.SetDocument(ctx, "owner-1", Achievements, "2024-03-04", json.RawMessage(`{"a":1,"b":2}`)))
		require.NoError(t, store.SetDocument(ctx, "owner-1", Achievements, "2024-03-04", json.RawMessage(`{"c":3}`)))

		var doc map[string]int
		found, err := GetJSON(ctx, store, "owner-1", Achievements, "2024-03-04", &doc)

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, map[string]int{"c": 3}, doc)
	})

	t.Run("keeps owners and collections apart", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, SetJSON(ctx, store, "owner-1", Schedules, "w1", map[string]string{"who": "one"}))
		require.NoError(t, SetJSON(ctx, store, "owner-2", Schedules, "w1", map[string]string{"who": "two"}))
		require.NoError(t, SetJSON(ctx, store, "owner-1", WeeklyGoals, "w1", map[string]string{"who": "goal"}))

		var doc map[string]string
		_, err := GetJSON(ctx, store, "owner-2", Schedules, "w1", &doc)
		require.NoError(t, err)
		assert.Equal(t, "two", doc["who"])

		all, err := store.ListAllDocuments(ctx, "owner-1", Schedules)
		require.NoError(t, err)
		assert.Len(t, all, 1)
		assert.JSONEq(t, `{"who":"one"}`, string(all["w1"]))
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, SetJSON(ctx, store, "owner-1", Schedules, "w1", map[string]string{}))

		require.NoError(t, store.DeleteDocument(ctx, "owner-1", Schedules, "w1"))
		require.NoError(t, store.DeleteDocument(ctx, "owner-1", Schedules, "w1"))
		require.NoError(t, store.DeleteDocument(ctx, "owner-1", Schedules, "never-existed"))

		data, err := store.GetDocument(ctx, "owner-1", Schedules, "w1")
		require.NoError(t, err)
		assert.Nil(t, data)
		all, err := store.ListAllDocuments(ctx, "owner-1", Schedules)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}
