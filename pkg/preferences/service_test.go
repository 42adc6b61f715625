package preferences

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/klokku/studyplan/internal/docstore"
	"github.com/klokku/studyplan/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceImpl_InclusionPolicy(t *testing.T) {
	ctx := test_utils.UserContext("user-1")

	t.Run("should fall back to the default when nothing is stored", func(t *testing.T) {
		service := NewService(docstore.NewMemoryStore(), AchievementsOnly)

		policy, err := service.GetInclusionPolicy(ctx)

		require.NoError(t, err)
		assert.Equal(t, AchievementsOnly, policy)
	})

	t.Run("should store the policy as a string", func(t *testing.T) {
		store := docstore.NewMemoryStore()
		service := NewService(store, AchievementsOnly)

		require.NoError(t, service.SetInclusionPolicy(ctx, AllPlanned))
		policy, err := service.GetInclusionPolicy(ctx)

		require.NoError(t, err)
		assert.Equal(t, AllPlanned, policy)
		raw, err := store.GetDocument(context.Background(), "user-1", docstore.Preferences, "inclusionPolicy")
		require.NoError(t, err)
		assert.JSONEq(t, `"false"`, string(raw))
	})

	t.Run("should ignore a malformed stored value", func(t *testing.T) {
		store := docstore.NewMemoryStore()
		require.NoError(t, store.SetDocument(context.Background(), "user-1", docstore.Preferences, "inclusionPolicy", json.RawMessage(`"sometimes"`)))
		service := NewService(store, AllPlanned)

		policy, err := service.GetInclusionPolicy(ctx)

		require.NoError(t, err)
		assert.Equal(t, AllPlanned, policy)
	})
}

func TestParsePolicy(t *testing.T) {
	policy, err := ParsePolicy("true")
	require.NoError(t, err)
	assert.Equal(t, AchievementsOnly, policy)
	assert.Equal(t, "achievementsOnly", policy.Name())

	_, err = ParsePolicy("maybe")
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}
