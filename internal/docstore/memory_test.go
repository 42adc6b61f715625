package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/klokku/studyplan/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})

	t.Run("injected failure surfaces as ErrStorageUnavailable", func(t *testing.T) {
		store := NewMemoryStore()
		store.SetFailure(errors.New("connection refused"))

		_, err := store.GetDocument(context.Background(), "o", Schedules, "w")
		require.ErrorIs(t, err, ErrStorageUnavailable)
		err = store.SetDocument(context.Background(), "o", Schedules, "w", []byte(`{}`))
		require.ErrorIs(t, err, ErrStorageUnavailable)

		store.SetFailure(nil)
		require.NoError(t, store.SetDocument(context.Background(), "o", Schedules, "w", []byte(`{}`)))
		assert.Equal(t, 1, store.Writes())
	})
}

func TestSQLiteStore(t *testing.T) {
	testStoreContract(t, func(t *testing.T) Store {
		return NewSQLiteStore(test_utils.NewInMemoryDB(t))
	})
}

func TestSessionRouter(t *testing.T) {
	durable := NewMemoryStore()
	ephemeral := NewMemoryStore()
	router := NewSessionRouter(durable, ephemeral)

	demoCtx := test_utils.DemoContext("demo-1")
	userCtx := test_utils.UserContext("user-1")

	require.NoError(t, SetJSON(demoCtx, router, "demo-1", Schedules, "w", map[string]int{"x": 1}))
	require.NoError(t, SetJSON(userCtx, router, "user-1", Schedules, "w", map[string]int{"x": 2}))

	demoDocs, err := ephemeral.ListAllDocuments(context.Background(), "demo-1", Schedules)
	require.NoError(t, err)
	assert.Len(t, demoDocs, 1)
	durableDemoDocs, err := durable.ListAllDocuments(context.Background(), "demo-1", Schedules)
	require.NoError(t, err)
	assert.Empty(t, durableDemoDocs)

	var doc map[string]int
	found, err := GetJSON(userCtx, router, "user-1", Schedules, "w", &doc)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, doc["x"])
}
