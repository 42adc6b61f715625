package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentUser(t *testing.T) {
	t.Run("returns user stored in context", func(t *testing.T) {
		ctx := WithUser(context.Background(), User{Uid: "abc", DisplayName: "Ada", Demo: true})

		u, err := CurrentUser(ctx)
		require.NoError(t, err)
		assert.True(t, u.Demo)

		id, err := CurrentId(ctx)
		require.NoError(t, err)
		assert.Equal(t, "abc", id)
	})

	t.Run("returns ErrNoUser without user", func(t *testing.T) {
		_, err := CurrentId(context.Background())
		require.ErrorIs(t, err, ErrNoUser)
	})

	t.Run("returns ErrNoUser for user without uid", func(t *testing.T) {
		_, err := CurrentUser(WithUser(context.Background(), User{DisplayName: "nobody"}))
		require.ErrorIs(t, err, ErrNoUser)
	})
}

func TestCurrentSessionKey(t *testing.T) {
	regular, err := CurrentSessionKey(WithUser(context.Background(), User{Uid: "abc"}))
	require.NoError(t, err)
	demo, err := CurrentSessionKey(WithUser(context.Background(), User{Uid: "abc", Demo: true}))
	require.NoError(t, err)

	assert.Equal(t, "abc", regular)
	assert.Equal(t, "demo:abc", demo)

	_, err = CurrentSessionKey(context.Background())
	assert.ErrorIs(t, err, ErrNoUser)
}
